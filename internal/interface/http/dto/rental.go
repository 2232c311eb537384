package dto

// RentRequest 借书/还书
// user_id只对管理员有效(代读者操作),读者始终以自己的身份操作
type RentRequest struct {
	BookID uint `json:"book_id" binding:"required" example:"1"`
	UserID uint `json:"user_id,omitempty" example:"0"`
}

// PayFineRequest 缴纳罚款
type PayFineRequest struct {
	UserID uint `json:"user_id,omitempty" example:"0"`
}
