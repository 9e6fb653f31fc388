package embedder

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// vocab is a WordPiece vocabulary; a token's id is its 0-indexed line number.
type vocab struct {
	ids    map[string]int64
	tokens []string

	padID int64
	unkID int64
	clsID int64
	sepID int64
}

func loadVocab(path string) (*vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: %w", err)
	}
	defer f.Close()

	var tokens []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		tokens = append(tokens, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("vocab: read: %w", err)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("vocab: file is empty: %s", path)
	}
	return newVocab(tokens)
}

func newVocab(tokens []string) (*vocab, error) {
	v := &vocab{ids: make(map[string]int64, len(tokens)), tokens: tokens}
	for i, tok := range tokens {
		if _, dup := v.ids[tok]; !dup {
			v.ids[tok] = int64(i)
		}
	}
	for name, dest := range map[string]*int64{
		"[PAD]": &v.padID,
		"[UNK]": &v.unkID,
		"[CLS]": &v.clsID,
		"[SEP]": &v.sepID,
	} {
		id, ok := v.ids[name]
		if !ok {
			return nil, fmt.Errorf("vocab: missing special token %s", name)
		}
		*dest = id
	}
	return v, nil
}

func (v *vocab) lookup(token string) int64 {
	if id, ok := v.ids[token]; ok {
		return id
	}
	return v.unkID
}

func (v *vocab) contains(token string) bool {
	_, ok := v.ids[token]
	return ok
}

func (v *vocab) size() int {
	return len(v.tokens)
}
