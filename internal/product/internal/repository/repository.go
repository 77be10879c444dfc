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

package repository

import (
	"context"

	"github.com/ecodeclub/bookstore/internal/product/internal/domain"
	"github.com/ecodeclub/bookstore/internal/product/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
	"gorm.io/gorm"
)

var (
	ErrBookNotFound      = dao.ErrBookNotFound
	ErrInsufficientStock = dao.ErrInsufficientStock
)

type BookRepository interface {
	FindByID(ctx context.Context, id int64) (domain.Book, error)
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Book, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, id int64, n int64) error
}

func NewRepository(d dao.BookDAO) BookRepository {
	return &bookRepository{d: d}
}

type bookRepository struct {
	d dao.BookDAO
}

func (b *bookRepository) FindByID(ctx context.Context, id int64) (domain.Book, error) {
	book, err := b.d.FindByID(ctx, id)
	if err != nil {
		return domain.Book{}, err
	}
	return b.toDomain(book), nil
}

func (b *bookRepository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Book, error) {
	books, err := b.d.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return slice.Map(books, func(idx int, src dao.Book) domain.Book {
		return b.toDomain(src)
	}), nil
}

func (b *bookRepository) DecrementStock(ctx context.Context, tx *gorm.DB, id int64, n int64) error {
	return b.d.DecrementStock(ctx, tx, id, n)
}

func (b *bookRepository) toDomain(book dao.Book) domain.Book {
	return domain.Book{
		ID:       book.Id,
		SN:       book.SN,
		Title:    book.Title,
		Author:   book.Author,
		Price:    book.Price,
		Stock:    book.Stock,
		SellerID: book.SellerId,
		Ctime:    book.Ctime,
		Utime:    book.Utime,
	}
}
