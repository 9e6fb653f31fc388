package tiermap_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/crimson-sun/tiermap/pkg/tiermap"
)

// keywordEmbedder stands in for a sentence encoder so the example runs
// without model files.
type keywordEmbedder struct{}

func (keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if strings.HasPrefix(text, "Automotive:") || strings.Contains(text, "hatchback") {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}

func (k keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = k.Embed(ctx, t)
	}
	return out, nil
}

func (keywordEmbedder) Close() error { return nil }

func Example() {
	tm, err := tiermap.New(
		tiermap.WithEmbedder(keywordEmbedder{}),
		tiermap.WithoutReasoning(),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer tm.Close()

	res, err := tm.Classify(context.Background(), "The hatchback gets a bigger battery this year.")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Domain: %s\n", res.Domain)
	fmt.Printf("Method: %s (%s)\n", res.Method, res.DegradedReason)
	// Output:
	// Domain: Automotive
	// Method: degraded (reasoning_unavailable)
}
