// internal/embedding/encoder.go
package embedding

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"

	"resume-screener/internal/common/config"
	"resume-screener/internal/screening/textnorm"
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// initRuntime initializes the shared ONNX Runtime environment once per
// process. The environment outlives all encoders.
func initRuntime(libraryPath string) error {
	ortInitOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// Encoder embeds text with a pretrained sentence-transformer exported to
// ONNX. Vectors are mean-pooled over the attention mask, L2-normalized, and
// memoized in memory and optionally on disk.
type Encoder struct {
	cfg      config.EmbedderConfig
	tk       *tokenizer.Tokenizer
	session  *ort.DynamicAdvancedSession
	memCache map[string][]float32
	mu       sync.RWMutex
	runMu    sync.Mutex
}

// New loads the tokenizer and opens the ONNX session.
func New(cfg config.EmbedderConfig) (*Encoder, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("embedder model path is not configured")
	}
	if cfg.TokenizerPath == "" {
		return nil, errors.New("embedder tokenizer path is not configured")
	}
	if cfg.ModelID == "" {
		cfg.ModelID = filepath.Base(cfg.ModelPath)
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 256
	}
	if cfg.CacheDir != "" {
		if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	if err := initRuntime(cfg.OrtLibrary); err != nil {
		return nil, fmt.Errorf("onnxruntime init failed: %w", err)
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("open onnx session: %w", err)
	}

	return &Encoder{
		cfg:      cfg,
		tk:       tk,
		session:  session,
		memCache: make(map[string][]float32),
	}, nil
}

// ModelID returns the identifier used for cache keys.
func (e *Encoder) ModelID() string {
	return e.cfg.ModelID
}

// Close releases the ONNX session. The shared runtime environment stays up.
func (e *Encoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		err := e.session.Destroy()
		e.session = nil
		e.memCache = nil
		return err
	}
	return nil
}

// EmbedText embeds a single string with caching.
func (e *Encoder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if e == nil || e.session == nil {
		return nil, errors.New("encoder is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	normalized := textnorm.CleanUnicode(text)
	key := e.cacheKey(normalized)
	if vec := e.getFromCache(key); vec != nil {
		return vec, nil
	}
	if vec, err := e.loadFromDisk(key); err == nil {
		e.storeInMemory(key, vec)
		return cloneVector(vec), nil
	}

	vec, err := e.encode(normalized)
	if err != nil {
		return nil, err
	}
	e.storeInMemory(key, vec)
	_ = e.saveToDisk(key, vec)
	return cloneVector(vec), nil
}

// EmbedTexts embeds a slice of strings sequentially.
func (e *Encoder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.EmbedText(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// encode runs tokenization and a single inference pass. The run mutex
// serializes session access; the session itself is reused for the process
// lifetime.
func (e *Encoder) encode(text string) ([]float32, error) {
	enc, err := e.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}

	ids := enc.Ids
	mask := enc.AttentionMask
	types := enc.TypeIds
	if len(ids) > e.cfg.MaxSeqLen {
		ids = ids[:e.cfg.MaxSeqLen]
		mask = mask[:e.cfg.MaxSeqLen]
		types = types[:e.cfg.MaxSeqLen]
	}
	if len(ids) == 0 {
		return nil, errors.New("tokenizer produced no tokens")
	}

	seqLen := int64(len(ids))
	shape := ort.NewShape(1, seqLen)

	idTensor, err := ort.NewTensor(shape, toInt64(ids))
	if err != nil {
		return nil, fmt.Errorf("input_ids tensor: %w", err)
	}
	defer idTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, toInt64(mask))
	if err != nil {
		return nil, fmt.Errorf("attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	typeTensor, err := ort.NewTensor(shape, toInt64(types))
	if err != nil {
		return nil, fmt.Errorf("token_type_ids tensor: %w", err)
	}
	defer typeTensor.Destroy()

	outputs := []ort.Value{nil}

	e.runMu.Lock()
	err = e.session.Run([]ort.Value{idTensor, maskTensor, typeTensor}, outputs)
	e.runMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}
	defer outputs[0].Destroy()

	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, errors.New("unexpected output tensor type")
	}

	dims := hidden.GetShape()
	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected output rank %d", len(dims))
	}
	hiddenDim := int(dims[2])

	return meanPool(hidden.GetData(), mask, hiddenDim), nil
}

// meanPool averages token vectors weighted by the attention mask, then
// L2-normalizes so cosine similarity reduces to a dot product.
func meanPool(data []float32, mask []int, hiddenDim int) []float32 {
	vec := make([]float32, hiddenDim)
	var count float32
	for t, m := range mask {
		if m == 0 {
			continue
		}
		count++
		base := t * hiddenDim
		for d := 0; d < hiddenDim; d++ {
			vec[d] += data[base+d]
		}
	}
	if count == 0 {
		return vec
	}
	for d := range vec {
		vec[d] /= count
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum > 0 {
		inv := float32(1 / math.Sqrt(sum))
		for d := range vec {
			vec[d] *= inv
		}
	}
	return vec
}

func toInt64(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

func (e *Encoder) cacheKey(text string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, e.cfg.ModelID)
	_, _ = io.WriteString(h, "|")
	_, _ = io.WriteString(h, text)
	return hex.EncodeToString(h.Sum(nil))
}

func (e *Encoder) getFromCache(key string) []float32 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if vec, ok := e.memCache[key]; ok {
		return cloneVector(vec)
	}
	return nil
}

func (e *Encoder) storeInMemory(key string, vec []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.memCache != nil {
		e.memCache[key] = cloneVector(vec)
	}
}

func (e *Encoder) loadFromDisk(key string) ([]float32, error) {
	if e.cfg.CacheDir == "" {
		return nil, os.ErrNotExist
	}
	path := filepath.Join(e.cfg.CacheDir, key+".bin")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("cache file too small: %s", path)
	}
	length := int(binary.LittleEndian.Uint32(data[:4]))
	data = data[4:]
	if len(data) != length*4 {
		return nil, fmt.Errorf("cache length mismatch: %s", path)
	}
	vec := make([]float32, length)
	for i := 0; i < length; i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4 : (i+1)*4]))
	}
	return vec, nil
}

func (e *Encoder) saveToDisk(key string, vec []float32) error {
	if e.cfg.CacheDir == "" {
		return nil
	}
	path := filepath.Join(e.cfg.CacheDir, key+".bin")
	tmp := path + ".tmp"
	buf := make([]byte, 4+len(vec)*4)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(vec)))
	off := 4
	for _, v := range vec {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
		off += 4
	}
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
