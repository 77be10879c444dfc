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

package domain

type DiscountType uint8

func (t DiscountType) ToUint8() uint8 {
	return uint8(t)
}

const (
	// DiscountTypePercentage 按小计的百分比减免
	DiscountTypePercentage DiscountType = 1
	// DiscountTypeFixedAmount 减免固定金额, 以免出现负数为上限
	DiscountTypeFixedAmount DiscountType = 2
	// DiscountTypeFreeDelivery 免配送费, 不影响小计
	DiscountTypeFreeDelivery DiscountType = 3
)

type Discount struct {
	ID          int64
	Code        string
	Description string
	Type        DiscountType
	// Value 百分比类型时为百分数, 固定金额类型时单位为分
	Value          int64
	MinCartValue   int64
	MaxUses        int64
	MaxUsesPerUser int64
	TimesUsed      int64
	Active         bool
	// StartAt/EndAt 为 UTC Unix 毫秒数, 0 表示无界
	StartAt int64
	EndAt   int64
	Ctime   int64
	Utime   int64
}
