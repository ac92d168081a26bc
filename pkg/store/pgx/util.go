package pgx

import (
	"slices"

	"github.com/OFFIS-RIT/kblink/pkg/common"
	"github.com/OFFIS-RIT/kblink/pkg/store"
)

// pgvector stores single precision values.
func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func relationIDs(vectors common.RelationVectors) []common.SourceID {
	rels := make([]common.SourceID, 0, len(vectors))
	for rel := range vectors {
		rels = append(rels, rel)
	}
	slices.Sort(rels)
	return rels
}

// labelColumns splits labels into parallel id and label slices ordered by id.
func labelColumns(labels map[common.TargetID]string) ([]string, []string) {
	raw := make([]string, 0, len(labels))
	for id := range labels {
		raw = append(raw, string(id))
	}
	slices.Sort(raw)

	// Distinct ids can sanitize to the same key; the greatest raw id wins.
	byKey := make(map[string]string, len(raw))
	for _, id := range raw {
		byKey[store.SanitizeText(id)] = store.SanitizeText(labels[common.TargetID(id)])
	}

	ids := make([]string, 0, len(byKey))
	for id := range byKey {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = byKey[id]
	}
	return ids, names
}
