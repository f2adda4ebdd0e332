package vectors

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// A Trainer runs the external fasttext binary over a corpus file.
type Trainer struct {
	// Binary is the fasttext executable. Looked up in PATH when not an
	// absolute path.
	Binary string

	Model    string // "skipgram" or "cbow"
	Dim      int
	Epoch    int
	MinCount int
}

// DefaultTrainer returns a Trainer with the settings the pipeline was
// tuned with.
func DefaultTrainer() Trainer {
	return Trainer{
		Binary:   "fasttext",
		Model:    "skipgram",
		Dim:      300,
		Epoch:    10,
		MinCount: 20,
	}
}

// Train runs fasttext on the corpus and writes output.bin and output.vec.
// When output.vec already exists, training is skipped. Partial outputs are
// removed when fasttext fails.
func (t Trainer) Train(corpus, output string) error {
	if t.Model != "skipgram" && t.Model != "cbow" {
		return fmt.Errorf("vectors: unknown model %q", t.Model)
	}
	if _, err := os.Stat(output + ".vec"); err == nil {
		return nil
	}

	cmd := exec.Command(t.Binary, t.Model,
		"-input", corpus,
		"-output", output,
		"-dim", strconv.Itoa(t.Dim),
		"-epoch", strconv.Itoa(t.Epoch),
		"-minCount", strconv.Itoa(t.MinCount),
	)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		os.Remove(output + ".bin")
		os.Remove(output + ".vec")
		return fmt.Errorf("vectors: fasttext: %w", err)
	}
	return nil
}
