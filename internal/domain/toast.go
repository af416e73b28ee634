package domain

// ToastKind selects how a notification is styled.
type ToastKind string

const (
	ToastNone    ToastKind = ""
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// Toast is the single visible notification. Generation identifies the Show
// call that produced it.
type Toast struct {
	Message    string    `json:"message"`
	Kind       ToastKind `json:"type"`
	Generation uint64    `json:"generation"`
}
