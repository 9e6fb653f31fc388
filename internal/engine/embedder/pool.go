package embedder

import "math"

// meanPool averages hidden states over positions where mask is 1.
//
// hidden: flat [batchSize * seqLen * dim]
// mask:   flat [batchSize * seqLen]
//
// Returns flat [batchSize * dim]. A sample with no real tokens pools to zeros.
func meanPool(hidden []float32, mask []int64, batchSize, seqLen, dim int64) []float32 {
	out := make([]float32, batchSize*dim)

	for b := int64(0); b < batchSize; b++ {
		row := out[b*dim : (b+1)*dim]
		var count float32
		for s := int64(0); s < seqLen; s++ {
			if mask[b*seqLen+s] != 1 {
				continue
			}
			count++
			tok := hidden[(b*seqLen+s)*dim : (b*seqLen+s+1)*dim]
			for d, v := range tok {
				row[d] += v
			}
		}
		if count == 0 {
			continue
		}
		for d := range row {
			row[d] /= count
		}
	}

	return out
}

// l2Normalize returns a unit-length copy of vec, or zeros for a zero vector.
func l2Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	out := make([]float32, len(vec))
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, v := range vec {
		out[i] = float32(float64(v) * inv)
	}
	return out
}
