package assist

import (
	"context"
	"fmt"
	"strings"

	"github.com/mindbook/mindbook/pkg/notegraph"
	"github.com/mindbook/mindbook/pkg/textgen"
)

const answerTemperature = 0.7

const answerSystemPrompt = `You are a personal AI assistant with access to the user's stored memories and notes.
Your task is to answer the user's question based on the context provided from their stored notes.
The context includes both directly relevant notes and related memories that might provide additional context.
Only use information from the provided context to answer. If you can't find relevant information in the context, let the user know that you don't have any stored memories about that topic.
Respond with something like 'yes i remember that' or 'no i don't remember you telling me that...' if possible or necessary.
Be as friendly as possible and try to make connections between related pieces of information when relevant.`

const answerUserPrompt = `Context from your memory (including related memories):
%s

Question: %s

Please answer based on the stored memories above, making connections between related information when relevant.`

// blockSeparator joins context blocks so the model can tell notes apart.
const blockSeparator = "\n\n---\n\n"

// relatedHeader introduces a hit's similarity-web neighbors.
const relatedHeader = "Related context:\n"

// similarityBlocks renders search hits as context blocks, one per hit,
// each followed by its related notes.
func similarityBlocks(hits []notegraph.Hit) []string {
	blocks := make([]string, 0, len(hits))
	for _, hit := range hits {
		var b strings.Builder
		b.WriteString(hit.Text)
		if len(hit.Related) > 0 {
			b.WriteString("\n\n")
			b.WriteString(relatedHeader)
			for i, rel := range hit.Related {
				if i > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(rel.Text)
			}
		}
		blocks = append(blocks, b.String())
	}
	return blocks
}

// temporalBlocks renders a temporal lookup as context blocks, one per
// note, keeping capture order.
func temporalBlocks(notes []notegraph.Note) []string {
	blocks := make([]string, 0, len(notes))
	for _, n := range notes {
		blocks = append(blocks, n.Text)
	}
	return blocks
}

// answer synthesizes a reply grounded in the context blocks. An empty
// context still goes to the model: the prompt instructs it to say it has
// no stored memories on the topic.
func (a *Assistant) answer(ctx context.Context, question string, blocks []string) (string, error) {
	combined := strings.Join(blocks, blockSeparator)
	out, err := a.completer.Complete(ctx, textgen.Request{
		System:      answerSystemPrompt,
		User:        fmt.Sprintf(answerUserPrompt, combined, question),
		Temperature: answerTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("synthesize answer: %w", err)
	}
	return strings.TrimSpace(out), nil
}
