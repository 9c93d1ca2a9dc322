package asr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// DefaultRecorderCommand records one utterance from the default input device
// as 16 kHz mono WAV on stdout and stops after 1.5s of silence.
var DefaultRecorderCommand = []string{
	"sox", "-d", "-q", "-c", "1", "-r", "16000", "-t", "wav", "-",
	"silence", "1", "0.1", "1%", "1", "1.5", "1%",
}

// Audio is a recorded utterance.
type Audio struct {
	Data []byte
	// Name is a file name whose extension tells the recognizer the format.
	Name string
}

// AudioSource produces the audio of one utterance. Cancelling ctx ends the
// recording; whatever was captured so far is returned.
type AudioSource interface {
	Record(ctx context.Context) (Audio, error)
}

// FileSource replays an audio file.
type FileSource struct {
	Path string
}

// Record reads the file.
func (f FileSource) Record(ctx context.Context) (Audio, error) {
	if err := ctx.Err(); err != nil {
		return Audio{}, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return Audio{}, fmt.Errorf("read audio file: %w", err)
	}
	return Audio{Data: data, Name: filepath.Base(f.Path)}, nil
}

// CommandSource records audio by running an external recorder that writes
// the utterance to stdout.
type CommandSource struct {
	Command []string
	// Name is reported with the audio; defaults to "utterance.wav".
	Name string
}

// Record runs the recorder until it exits or ctx is cancelled. Cancelling
// sends an interrupt so the recorder can finalize its output.
func (c CommandSource) Record(ctx context.Context) (Audio, error) {
	command := c.Command
	if len(command) == 0 {
		command = DefaultRecorderCommand
	}
	name := c.Name
	if name == "" {
		name = "utterance.wav"
	}

	var stdout, stderr bytes.Buffer
	// The recorder outlives ctx briefly so an interrupt can flush its output.
	cmd := exec.Command(command[0], command[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		return Audio{}, fmt.Errorf("start recorder %s: %w", command[0], err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case err = <-done:
		case <-time.After(2 * time.Second):
			_ = cmd.Process.Kill()
			err = <-done
		}
		if stdout.Len() > 0 {
			err = nil
		}
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			return Audio{}, fmt.Errorf("recorder %s: %w: %s", command[0], err, bytes.TrimSpace(stderr.Bytes()))
		}
		return Audio{}, fmt.Errorf("recorder %s: %w", command[0], err)
	}
	return Audio{Data: stdout.Bytes(), Name: name}, nil
}
