package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	htgotts "github.com/hegedustibor/htgo-tts"
	"github.com/rs/zerolog"

	"tubebrief/errors"
)

// AudioFileName is the narration artifact name inside a job directory.
const AudioFileName = "summary.mp3"

// The synthesis endpoint rejects long inputs, so text is split into chunks
// at sentence boundaries and the resulting MP3 segments are appended.
const maxChunkLen = 180

// Narrator turns summary text into a speech file via the external synthesis
// utility. Pure request/response; any failure is reported and the narration
// is simply absent, the summary itself is unaffected.
type Narrator struct {
	logger zerolog.Logger
}

func NewNarrator(log zerolog.Logger) *Narrator {
	return &Narrator{logger: log.With().Str("component", "narrator").Logger()}
}

// Narrate synthesizes text in the given language into destDir and returns
// the artifact file name.
func (n *Narrator) Narrate(ctx context.Context, text, languageTag, destDir string) (string, error) {
	const op = "artifacts.Narrate"

	if strings.TrimSpace(text) == "" {
		return "", errors.InvalidInput(op, nil, "Nothing to narrate")
	}

	workDir, err := os.MkdirTemp(destDir, "tts-")
	if err != nil {
		return "", errors.Internal(op, err, "Failed to create synthesis directory")
	}
	defer os.RemoveAll(workDir)

	speech := htgotts.Speech{Folder: workDir, Language: languageTag}

	var audio []byte
	for i, chunk := range chunkText(text, maxChunkLen) {
		if ctx.Err() != nil {
			return "", errors.TransportFailure(op, ctx.Err(), "Narration was cancelled")
		}

		fileName, err := speech.CreateSpeechFile(chunk, "chunk")
		if err != nil {
			return "", errors.TransportFailure(op, err, "Speech synthesis failed")
		}

		segment, err := os.ReadFile(fileName)
		if err != nil {
			return "", errors.Internal(op, err, "Failed to read synthesized segment")
		}
		os.Remove(fileName)

		audio = append(audio, segment...)
		n.logger.Debug().Int("chunk", i+1).Int("bytes", len(segment)).Msg("Synthesized narration chunk")
	}

	if len(audio) == 0 {
		return "", errors.UpstreamUnavailable(op, nil, "Speech synthesis produced no audio")
	}

	outPath := filepath.Join(destDir, AudioFileName)
	if err := os.WriteFile(outPath, audio, 0644); err != nil {
		return "", errors.Internal(op, err, "Failed to write narration file")
	}

	return AudioFileName, nil
}

// chunkText splits text into pieces of at most limit bytes, preferring
// sentence boundaries and falling back to word boundaries. Words longer
// than the limit are hard-split so progress is always made.
func chunkText(text string, limit int) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, sentence := range splitSentences(text) {
		if current.Len()+len(sentence)+1 > limit {
			flush()
		}
		if len(sentence) <= limit {
			if current.Len() > 0 {
				current.WriteByte(' ')
			}
			current.WriteString(sentence)
			continue
		}

		// Sentence alone exceeds the limit; fall back to words.
		for _, word := range strings.Fields(sentence) {
			for len(word) > limit {
				cut := limit
				for cut > 0 && !utf8.RuneStart(word[cut]) {
					cut--
				}
				flush()
				chunks = append(chunks, word[:cut])
				word = word[cut:]
			}
			if current.Len()+len(word)+1 > limit {
				flush()
			}
			if current.Len() > 0 {
				current.WriteByte(' ')
			}
			current.WriteString(word)
		}
	}
	flush()

	return chunks
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
