package repository

import "gorm.io/gorm"

// 单页行数上限，与接口层的归一化口径一致。
const maxListPageSize = 100

// applyPagination 应用分页参数，页码从 1 开始。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageSize > maxListPageSize {
		pageSize = maxListPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
