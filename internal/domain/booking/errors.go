package booking

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 借阅领域错误定义
var (
	ErrBookingNotFound     = apperrors.New(apperrors.ErrCodeBookingNotFound, "借阅记录不存在")
	ErrBookAlreadyBorrowed = apperrors.New(apperrors.ErrCodeBookAlreadyBorrowed, "您已借阅该书且尚未归还")
	ErrUserHasOverdueBooks = apperrors.New(apperrors.ErrCodeUserHasOverdueBooks, "存在逾期未还的图书，请先归还")
	ErrUserHasUnpaidFines  = apperrors.New(apperrors.ErrCodeUserHasUnpaidFines, "存在未缴纳的罚款，请先缴纳")
	ErrBookNotBorrowed     = apperrors.New(apperrors.ErrCodeBookNotBorrowed, "未借阅该书")
	ErrBookingClosed       = apperrors.New(apperrors.ErrCodeBookingClosed, "借阅记录已归还")
	ErrUserMismatch        = apperrors.New(apperrors.ErrCodeUserMismatch, "借阅记录不属于该用户")
)
