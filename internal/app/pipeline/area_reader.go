package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/terratensor/cnareas/internal/config"
	"github.com/terratensor/cnareas/internal/core/domain"
)

const maxLineSize = 1024 * 1024

// AreaFileReader читает список "名称 代码" и отдаёт упорядоченные строки
type AreaFileReader struct {
	*BaseParser
	encoding  string
	normalize bool
}

func NewAreaFileReader(cfg *config.Config) *AreaFileReader {
	return &AreaFileReader{
		BaseParser: NewBaseParser(cfg),
		encoding:   cfg.SourceEncoding,
		normalize:  cfg.NormalizeLines,
	}
}

// ReadFile читает файл целиком с прогресс баром
func (r *AreaFileReader) ReadFile(ctx context.Context, filePath string) ([]domain.SourceLine, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	log.Printf("Reading area codes from: %s", filepath.Base(filePath))

	bar, err := r.ProgressBar(file, "Reading areas")
	if err != nil {
		return nil, err
	}
	defer bar.Finish()

	return r.ReadFrom(ctx, io.TeeReader(file, bar))
}

// ReadFrom читает строки из произвольного источника.
// Пустые строки пропускаются, но нумерация сохраняет позиции исходного файла.
func (r *AreaFileReader) ReadFrom(ctx context.Context, src io.Reader) ([]domain.SourceLine, error) {
	decoded, err := decodeReader(src, r.encoding)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var lines []domain.SourceLine
	lineNo := 0

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		lineNo++
		text := scanner.Text()
		if r.normalize {
			text = normalizeLine(text)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		lines = append(lines, domain.SourceLine{No: lineNo, Text: text})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading line %d: %w", lineNo+1, err)
	}

	return lines, nil
}
