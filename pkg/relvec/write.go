package relvec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/OFFIS-RIT/kblink/pkg/common"
	"github.com/OFFIS-RIT/kblink/pkg/logger"
)

// FormatScore renders a score as the shortest decimal that parses back to it.
func FormatScore(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// WriteScores writes one "<e1>\t<e2>\t<relation>\t<score>" line per pair and
// returns the number of lines written.
func WriteScores(w io.Writer, scores []common.ScoredPair) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	for _, s := range scores {
		if _, err := fmt.Fprintf(bw, "%d\t%d\t%d\t%s\n", s.E1, s.E2, s.Relation, FormatScore(s.Score)); err != nil {
			return n, fmt.Errorf("failed to write scored pair: %w", err)
		}
		n++
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("failed to write scored pairs: %w", err)
	}
	logger.Info("Wrote scored pairs", "lines", n)
	return n, nil
}
