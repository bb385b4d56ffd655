package util

import "fmt"

// Code is an entry of the error catalog shared with API clients.
type Code struct {
	ID      string
	Message string
}

// Format renders the catalog message with the given arguments.
func (c Code) Format(args ...any) string {
	if len(args) == 0 {
		return c.Message
	}
	return fmt.Sprintf(c.Message, args...)
}

var (
	CodeAccessDenied   = Code{ID: "ML-0001", Message: "Access Denied"}
	CodeInvalidRequest = Code{ID: "ML-0002", Message: "Invalid Request"}
	CodeInternal       = Code{ID: "ML-0003", Message: "Internal Server Error"}
	CodeRouteNotFound  = Code{ID: "ML-0004", Message: "Resource not found"}

	CodeBookNotFound      = Code{ID: "ML-1001", Message: "Book [%d] not exists"}
	CodeBookInvalidStatus = Code{ID: "ML-1002", Message: "Cannot update book with status [%s]"}

	CodeCustomerNotFound = Code{ID: "ML-2001", Message: "Customer [%d] not exists"}
	CodeEmailUnavailable = Code{ID: "ML-2002", Message: "Email already in use"}

	CodePurchaseEmpty       = Code{ID: "ML-3001", Message: "Purchase must contain at least one book"}
	CodePurchaseUnavailable = Code{ID: "ML-3002", Message: "Book [%d] is not available for purchase"}
)
