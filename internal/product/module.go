// Copyright 2023 ecodeclub
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package product

import (
	"github.com/ecodeclub/bookstore/internal/product/internal/domain"
	"github.com/ecodeclub/bookstore/internal/product/internal/repository"
	"github.com/ecodeclub/bookstore/internal/product/internal/service"
)

type (
	Book    = domain.Book
	Service = service.Service
)

var (
	ErrBookNotFound      = repository.ErrBookNotFound
	ErrInsufficientStock = repository.ErrInsufficientStock
)

type Module struct {
	Svc Service
}
