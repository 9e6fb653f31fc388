package embedder

import (
	"fmt"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Only the first call has
// any effect; later calls return the first result.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// onnxSession wraps a DynamicAdvancedSession for encoder models.
type onnxSession struct {
	session    *ort.DynamicAdvancedSession
	inputNames []string
	outputName string
	embedDim   int64
	// withTypes is false for models without token_type_ids (XLM-R, e5).
	withTypes bool
}

func newONNXSession(modelPath, libPath string, threads int) (*onnxSession, error) {
	if libPath == "" {
		libPath = filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
	}
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}
	inputNames, withTypes, err := resolveInputs(inputs)
	if err != nil {
		return nil, err
	}

	// Expect last_hidden_state with shape [batch, seq, dim].
	if len(outputs) == 0 {
		return nil, fmt.Errorf("onnx: model has no outputs")
	}
	dims := outputs[0].Dimensions
	if len(dims) != 3 || dims[2] <= 0 {
		return nil, fmt.Errorf("onnx: expected [batch, seq, dim] output, got %v", dims)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	if threads <= 0 {
		threads = 4
	}
	opts.SetIntraOpNumThreads(threads)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, []string{outputs[0].Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &onnxSession{
		session:    session,
		inputNames: inputNames,
		outputName: outputs[0].Name,
		embedDim:   dims[2],
		withTypes:  withTypes,
	}, nil
}

// resolveInputs requires input_ids and attention_mask; token_type_ids is
// passed only when the model declares it.
func resolveInputs(inputs []ort.InputOutputInfo) ([]string, bool, error) {
	have := make(map[string]bool, len(inputs))
	for _, inp := range inputs {
		have[inp.Name] = true
	}
	for _, name := range []string{"input_ids", "attention_mask"} {
		if !have[name] {
			return nil, false, fmt.Errorf("onnx: model missing required input %q", name)
		}
	}
	names := []string{"input_ids", "attention_mask"}
	if have["token_type_ids"] {
		return append(names, "token_type_ids"), true, nil
	}
	return names, false, nil
}

// infer returns the flat [batchSize * seqLen * embedDim] hidden states.
func (s *onnxSession) infer(b tokenized) ([]float32, error) {
	shape := ort.NewShape(b.batchSize, b.seqLen)

	tIDs, err := ort.NewTensor(shape, b.inputIDs)
	if err != nil {
		return nil, fmt.Errorf("onnx: input_ids tensor: %w", err)
	}
	defer tIDs.Destroy()

	tMask, err := ort.NewTensor(shape, b.attentionMask)
	if err != nil {
		return nil, fmt.Errorf("onnx: attention_mask tensor: %w", err)
	}
	defer tMask.Destroy()

	in := []ort.Value{tIDs, tMask}
	if s.withTypes {
		tTypes, err := ort.NewTensor(shape, b.tokenTypeIDs)
		if err != nil {
			return nil, fmt.Errorf("onnx: token_type_ids tensor: %w", err)
		}
		defer tTypes.Destroy()
		in = append(in, tTypes)
	}

	tOut, err := ort.NewEmptyTensor[float32](ort.NewShape(b.batchSize, b.seqLen, s.embedDim))
	if err != nil {
		return nil, fmt.Errorf("onnx: output tensor: %w", err)
	}
	defer tOut.Destroy()

	if err := s.session.Run(in, []ort.Value{tOut}); err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}

	// Copy out before the tensor is destroyed.
	src := tOut.GetData()
	out := make([]float32, len(src))
	copy(out, src)
	return out, nil
}

func (s *onnxSession) close() error {
	return s.session.Destroy()
}
