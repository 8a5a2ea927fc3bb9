package response

import (
	"time"
)

// ErrorResponse 失败响应
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp int64  `json:"timestamp"`
}

// PageResponse 分页响应结构体
type PageResponse[T any] struct {
	Page      int `json:"page"`
	Size      int `json:"size"`
	TotalPage int `json:"totalPage"`
	Total     int `json:"total"`
	List      []T `json:"list"`
}

// Error 构造一个失败的响应
func Error(message string) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewPage 计算总页数，list 为 nil 时返回空数组
func NewPage[T any](list []T, page, size int, total int64) *PageResponse[T] {
	if list == nil {
		list = []T{}
	}
	totalPage := 0
	if size > 0 {
		totalPage = (int(total) + size - 1) / size
	}
	return &PageResponse[T]{
		Page:      page,
		Size:      size,
		Total:     int(total),
		TotalPage: totalPage,
		List:      list,
	}
}
