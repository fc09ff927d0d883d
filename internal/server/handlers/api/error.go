package api

import "fmt"

type VaultAPIError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *VaultAPIError) Error() string {
	return fmt.Sprintf("vault api error: code=%s, message=%s", e.Code, e.Message)
}
