package svc

import "errors"

// ErrNoFeedsEnabled 错误：没有启用任何交易所行情
var ErrNoFeedsEnabled = errors.New("no exchange feeds enabled")

// ErrStorageInitFailed 错误：存储初始化失败
var ErrStorageInitFailed = errors.New("storage initialization failed")

// ErrUnknownExchange 错误：配置了未注册的交易所
var ErrUnknownExchange = errors.New("exchange not registered")
