package dto

// CreateBookRequest 新增图书
type CreateBookRequest struct {
	Title     string `json:"title" binding:"required,max=200" example:"三体"`
	Year      int    `json:"year" binding:"required" example:"2008"`
	AuthorID  uint   `json:"author_id" binding:"required" example:"3"`
	GenreIDs  []uint `json:"genre_ids" binding:"required,min=1" example:"1,4"`
	Available int    `json:"available" example:"5"` // 初始可借副本数
}

// UpdateBookRequest 修改元数据,只提交需要修改的字段
// expected_version必须是最近一次读取到的version
type UpdateBookRequest struct {
	ExpectedVersion *int    `json:"expected_version" binding:"required" example:"0"`
	Title           *string `json:"title" binding:"omitempty,max=200" example:"三体（典藏版）"`
	Year            *int    `json:"year" example:"2008"`
	AuthorID        *uint   `json:"author_id" example:"3"`
	GenreIDs        []uint  `json:"genre_ids" example:"1,4"`
}

// AdjustStockRequest 补货/核销数量
// 数量合法性由用例校验,非正数返回40010
type AdjustStockRequest struct {
	Amount int `json:"amount" example:"3"`
}
