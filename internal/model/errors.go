package model

import "errors"

// 错误分类：本地存储错误对当前操作是致命的，不自动重试；
// 网络错误可由调用方整体重试；解析/校验错误在批量操作中只计数跳过，不中断
var (
	ErrStorage    = errors.New("本地存储错误")
	ErrNetwork    = errors.New("网络请求失败")
	ErrParse      = errors.New("数据解析失败")
	ErrValidation = errors.New("数据校验失败")
	ErrNotFound   = errors.New("记录不存在")
)
