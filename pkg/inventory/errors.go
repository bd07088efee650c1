package inventory

import "fmt"

// ToolDoesNotExistError is returned when a tool is not found.
type ToolDoesNotExistError struct {
	Name string
}

func (e *ToolDoesNotExistError) Error() string {
	return fmt.Sprintf("tool %s does not exist", e.Name)
}

// NewToolDoesNotExistError creates a new ToolDoesNotExistError.
func NewToolDoesNotExistError(name string) *ToolDoesNotExistError {
	return &ToolDoesNotExistError{Name: name}
}

// PromptDoesNotExistError is returned when a prompt is not found.
type PromptDoesNotExistError struct {
	Name string
}

func (e *PromptDoesNotExistError) Error() string {
	return fmt.Sprintf("prompt %s does not exist", e.Name)
}

// NewPromptDoesNotExistError creates a new PromptDoesNotExistError.
func NewPromptDoesNotExistError(name string) *PromptDoesNotExistError {
	return &PromptDoesNotExistError{Name: name}
}
