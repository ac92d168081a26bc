package vector

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/kblink/pkg/logger"
)

// Format names a word2vec serialization.
type Format string

const (
	FormatBinary Format = "binary"
	FormatText   Format = "text"
)

// ParseFormat maps "binary" and "text" to a Format. The empty string means binary.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatBinary:
		return FormatBinary, nil
	case FormatText:
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown vector format %q", s)
}

// LoadOptions configures LoadWord2Vec.
type LoadOptions struct {
	Format Format
	// Keep restricts the retained terms. A nil Keep retains every term.
	Keep func(term string) bool
}

// LoadStats describes a loaded model.
type LoadStats struct {
	// Declared is the term count from the model header.
	Declared int
	Read     int
	Kept     int
	Dim      int
}

// maxTermLen bounds a single term in the binary format.
const maxTermLen = 1 << 16

// LoadWord2Vec reads a model in the word2vec binary or text format. Both
// formats start with a "<count> <dim>" header line.
func LoadWord2Vec(ctx context.Context, r io.Reader, opts LoadOptions) (*Memory, LoadStats, error) {
	br := bufio.NewReaderSize(r, 1<<20)

	header, err := br.ReadString('\n')
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("failed to read model header: %w", err)
	}
	count, dim, err := parseHeader(header)
	if err != nil {
		return nil, LoadStats{}, err
	}

	stats := LoadStats{Declared: count, Dim: dim}
	vectors := make(map[string][]float32)
	keep := func(term string) bool {
		if opts.Keep == nil {
			return true
		}
		return opts.Keep(term)
	}

	var next func() (string, []float32, error)
	switch opts.Format {
	case FormatText:
		next = func() (string, []float32, error) { return readTextVector(br, dim) }
	case "", FormatBinary:
		raw := make([]byte, 4*dim)
		next = func() (string, []float32, error) { return readBinaryVector(br, dim, raw) }
	default:
		return nil, stats, fmt.Errorf("unknown vector format %q", opts.Format)
	}

	for i := 0; i < count; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}
		term, vec, err := next()
		if err != nil {
			return nil, stats, fmt.Errorf("failed to read vector %d of %d: %w", i+1, count, err)
		}
		stats.Read++
		if !keep(term) {
			continue
		}
		vectors[term] = vec
	}
	stats.Kept = len(vectors)

	logger.Info("Loaded vector model", "format", opts.Format, "dim", dim, "terms", stats.Read, "kept", stats.Kept)

	m, err := NewMemory(dim, vectors)
	if err != nil {
		return nil, stats, err
	}
	return m, stats, nil
}

const ctxCheckEvery = 1 << 14

func parseHeader(line string) (int, int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("invalid model header %q", strings.TrimSpace(line))
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil || count < 0 {
		return 0, 0, fmt.Errorf("invalid term count in model header %q", strings.TrimSpace(line))
	}
	dim, err := strconv.Atoi(fields[1])
	if err != nil || dim <= 0 {
		return 0, 0, fmt.Errorf("invalid dimension in model header %q", strings.TrimSpace(line))
	}
	return count, dim, nil
}

// readBinaryVector reads "<term> " followed by dim little endian float32
// values. Writers separate entries with an optional newline.
func readBinaryVector(br *bufio.Reader, dim int, raw []byte) (string, []float32, error) {
	var term []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", nil, io.ErrUnexpectedEOF
			}
			return "", nil, err
		}
		if b == ' ' {
			break
		}
		if b == '\n' && len(term) == 0 {
			continue
		}
		term = append(term, b)
		if len(term) > maxTermLen {
			return "", nil, fmt.Errorf("term exceeds %d bytes", maxTermLen)
		}
	}

	if _, err := io.ReadFull(br, raw); err != nil {
		return "", nil, fmt.Errorf("failed to read vector of %q: %w", term, err)
	}
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return string(term), vec, nil
}

// readTextVector reads one "<term> <f1> ... <fdim>" line.
func readTextVector(br *bufio.Reader, dim int) (string, []float32, error) {
	line, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", nil, io.ErrUnexpectedEOF
		}
		return "", nil, err
	}

	fields := strings.Fields(line)
	if len(fields) != dim+1 {
		return "", nil, fmt.Errorf("expected term and %d values, got %d fields", dim, len(fields))
	}
	vec := make([]float32, dim)
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return "", nil, fmt.Errorf("invalid value for %q: %w", fields[0], err)
		}
		vec[i] = float32(v)
	}
	return fields[0], vec, nil
}

// LoadVocabulary reads one term per line. Only the first whitespace
// separated field of a line is used, so gensim count files load as well.
func LoadVocabulary(ctx context.Context, r io.Reader) (TermSet, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxTermLen)

	vocab := make(TermSet)
	n := 0
	for sc.Scan() {
		n++
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		vocab[fields[0]] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	logger.Info("Loaded vocabulary", "terms", len(vocab))
	return vocab, nil
}
