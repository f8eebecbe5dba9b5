package domain

import "fmt"

// DiagnosticKind тип проблемы, обнаруженной при разборе или аннотации
type DiagnosticKind string

const (
	// KindMalformedLine строка не делится на два токена или код не определяется однозначно
	KindMalformedLine DiagnosticKind = "malformed-line"
	// KindOrphanRecord для 地级/县级 записи нет подходящего родителя
	KindOrphanRecord DiagnosticKind = "orphan-record"
	// KindDuplicateID id уже есть в индексе, первая запись остаётся
	KindDuplicateID DiagnosticKind = "duplicate-id"
	// KindDepthExceeded дерево глубже maxDepth, поддерево отброшено
	KindDepthExceeded DiagnosticKind = "depth-exceeded"
)

// Diagnostic описывает пропущенную строку или нарушение целостности.
// Line заполняется для проблем разбора, NodeID для проблем аннотации.
type Diagnostic struct {
	Line   int            `json:"line,omitempty"`
	NodeID string         `json:"nodeId,omitempty"`
	Kind   DiagnosticKind `json:"kind"`
	Detail string         `json:"detail"`
}

// Context возвращает место возникновения: строку источника или узел
func (d Diagnostic) Context() string {
	switch {
	case d.Line > 0:
		return fmt.Sprintf("line %d", d.Line)
	case d.NodeID != "":
		return fmt.Sprintf("node %s", d.NodeID)
	default:
		return "-"
	}
}

// String returns a string representation of the diagnostic
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s] %s", d.Context(), d.Kind, d.Detail)
}
