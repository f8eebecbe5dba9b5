package services

import (
	"fmt"
	"strings"

	"github.com/terratensor/cnareas/internal/core/domain"
)

// ParseRecord разбирает строку "名称 代码" (или "代码 名称") в запись.
// Некорректная строка возвращает диагностику и пропускается вызывающим,
// код неверной длины возвращает *domain.CodeError и прерывает разбор.
func ParseRecord(line domain.SourceLine) (domain.Record, *domain.Diagnostic, error) {
	parts := strings.Fields(line.Text)
	if len(parts) != 2 {
		return domain.Record{}, &domain.Diagnostic{
			Line:   line.No,
			Kind:   domain.KindMalformedLine,
			Detail: fmt.Sprintf("expected 2 tokens, got %d: %q", len(parts), line.Text),
		}, nil
	}

	name, code := parts[0], parts[1]
	nameNumeric, codeNumeric := domain.IsDigits(name), domain.IsDigits(code)

	switch {
	case nameNumeric && codeNumeric:
		return domain.Record{}, &domain.Diagnostic{
			Line:   line.No,
			Kind:   domain.KindMalformedLine,
			Detail: fmt.Sprintf("both tokens are numeric: %q", line.Text),
		}, nil
	case !nameNumeric && !codeNumeric:
		return domain.Record{}, &domain.Diagnostic{
			Line:   line.No,
			Kind:   domain.KindMalformedLine,
			Detail: fmt.Sprintf("no numeric code: %q", line.Text),
		}, nil
	case nameNumeric:
		// Некоторые выгрузки пишут код первым
		name, code = code, name
	}

	if len(code) != domain.CodeLength {
		return domain.Record{}, nil, &domain.CodeError{Line: line.No, Code: code}
	}

	return domain.Record{Line: line.No, Name: name, Code: code}, nil, nil
}
