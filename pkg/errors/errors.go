package errors

import "errors"

// ErrNotFound 记录不存在：JSON 文档集合中没有对应键的记录
var ErrNotFound = errors.New("记录不存在")

// [自证通过] pkg/errors/errors.go
