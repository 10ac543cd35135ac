package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"log"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Dimensions is fixed for every vector in the store; the vector index is
// built against it, so all embeddings (live or fallback) must match it.
const Dimensions = 1536

const requestTimeout = 15 * time.Second

// Client produces embedding vectors for incident descriptions.
type Client struct {
	openai *openai.Client
}

func NewClient(openaiClient *openai.Client) *Client {
	return &Client{openai: openaiClient}
}

// Embed returns a vector of Dimensions floats for the given text. Blank text
// yields a zero vector. When the embeddings API fails the deterministic
// fallback vector is used instead, so near-duplicate detection keeps working
// (for exactly repeated text) while the backend is down.
func (c *Client) Embed(ctx context.Context, text string) []float64 {
	if strings.TrimSpace(text) == "" {
		return make([]float64, Dimensions)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.openai.CreateEmbeddings(reqCtx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.LargeEmbedding3,
		Dimensions: Dimensions,
	})
	if err != nil || len(resp.Data) == 0 {
		log.Printf("Embedding request failed, using fallback vector: %v", err)
		return FallbackVector(text)
	}

	vec := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float64(v)
	}
	return vec
}

// FallbackVector expands a sha256 hash of the text into a pseudo-random
// vector in [-1, 1). Identical text always yields an identical vector,
// distinct texts yield distinct ones, which is all dedup needs from it.
func FallbackVector(text string) []float64 {
	vec := make([]float64, Dimensions)

	block := sha256.Sum256([]byte(text))
	i := 0
	for i < Dimensions {
		block = sha256.Sum256(block[:])
		for j := 0; j+8 <= len(block) && i < Dimensions; j += 8 {
			u := binary.BigEndian.Uint64(block[j : j+8])
			vec[i] = float64(u)/float64(math.MaxUint64)*2 - 1
			i++
		}
	}
	return vec
}
