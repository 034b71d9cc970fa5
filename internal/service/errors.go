package service

import "errors"

// 服务层业务错误，由 HTTP 层映射为响应码
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidParam       = errors.New("invalid parameter")
	ErrOrderNotFound      = errors.New("order not found")
	ErrProductNotFound    = errors.New("product not found or inactive")
	ErrOrderNotPayable    = errors.New("order not in payable status")
	ErrOrderFinalized     = errors.New("order already finalized")
	ErrCardNoRequired     = errors.New("card number required for card payment")
	ErrSignatureInvalid   = errors.New("callback signature invalid")
)
