package apierror

type ErrorResponse struct {
	Code        int    `json:"code"`
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

func NewErrorResponse(code int, errorToken, description string) *ErrorResponse {
	return &ErrorResponse{
		Code:        code,
		Error:       errorToken,
		Description: description,
	}
}
