package book

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrBookNotAvailable 没有可借副本
	ErrBookNotAvailable = apperrors.New(apperrors.ErrCodeBookNotAvailable, "该书暂无可借副本")

	// ErrInsufficientStock 可用库存少于核销数量
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "可用库存不足")

	// ErrVersionConflict 元数据已被他人修改,需要重新读取
	ErrVersionConflict = apperrors.New(apperrors.ErrCodeVersionConflict, "图书信息已被修改，请刷新后重试")

	// ErrBookHasBookings 存在借阅记录,不能删除
	ErrBookHasBookings = apperrors.New(apperrors.ErrCodeBookHasBookings, "图书存在借阅记录，不能删除")

	// ErrInvalidAmount 数量必须大于0
	ErrInvalidAmount = apperrors.New(apperrors.ErrCodeInvalidAmount, "数量必须大于0")

	// ErrInvalidStock 初始库存不能为负数
	ErrInvalidStock = apperrors.New(apperrors.ErrCodeInvalidStock, "库存不能为负数")

	// ErrInvalidTitle 书名为空或过长
	ErrInvalidTitle = apperrors.New(apperrors.ErrCodeInvalidTitle, "书名不能为空且不超过200个字符")

	// ErrInvalidYear 出版年份非法
	ErrInvalidYear = apperrors.New(apperrors.ErrCodeInvalidYear, "出版年份必须为正数且不晚于今年")

	// ErrInvalidAuthor 作者ID非法
	ErrInvalidAuthor = apperrors.New(apperrors.ErrCodeInvalidAuthor, "作者ID必须为正数")

	// ErrGenresRequired 至少一个类别
	ErrGenresRequired = apperrors.New(apperrors.ErrCodeGenresRequired, "至少选择一个类别")

	// ErrEmptyPatch 没有需要修改的字段
	ErrEmptyPatch = apperrors.New(apperrors.ErrCodeEmptyPatch, "没有需要修改的字段")
)
