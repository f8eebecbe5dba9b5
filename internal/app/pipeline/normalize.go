package pipeline

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// normalizeLine убирает служебные символы (BOM, zero-width), приводит
// полноширинные цифры и пробелы к ASCII и нормализует в NFC.
// Пример: "\ufeff北京市\u3000１１００００" → "北京市 110000"
func normalizeLine(s string) string {
	t := transform.Chain(runes.Remove(runes.In(unicode.Cf)), width.Fold, norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// sourceEncoding возвращает декодер для кодировки исходного файла;
// nil означает UTF-8 без перекодирования
func sourceEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "")) {
	case "", "utf8":
		return nil, nil
	case "gbk", "cp936":
		return simplifiedchinese.GBK, nil
	case "gb18030":
		return simplifiedchinese.GB18030, nil
	default:
		return nil, fmt.Errorf("unsupported source encoding: %s", name)
	}
}

// decodeReader оборачивает r декодером, если кодировка не UTF-8
func decodeReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := sourceEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return r, nil
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
