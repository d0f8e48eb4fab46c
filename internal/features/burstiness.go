package features

import (
	"context"

	"ai-detector/internal/common"
	"ai-detector/internal/textutil"
)

func burstiness(_ context.Context, text string) (Vector, error) {
	sentences := textutil.Sentences(text)

	v := make(Vector, 6)
	v.set(common.GroupBurstiness, "sentences", float64(len(sentences)))
	if len(sentences) < 2 {
		for _, name := range []string{"value", "mean", "std", "min", "max"} {
			v.set(common.GroupBurstiness, name, 0)
		}
		return v, nil
	}

	lengths := make([]float64, len(sentences))
	for i, s := range sentences {
		lengths[i] = float64(len(textutil.Words(s)))
	}
	lo, hi := textutil.MinMax(lengths)

	v.set(common.GroupBurstiness, "value", textutil.CV(lengths))
	v.set(common.GroupBurstiness, "mean", textutil.Mean(lengths))
	v.set(common.GroupBurstiness, "std", textutil.PopStd(lengths))
	v.set(common.GroupBurstiness, "min", lo)
	v.set(common.GroupBurstiness, "max", hi)
	return v, nil
}
