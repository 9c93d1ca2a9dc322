package tts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// DefaultPlayerCommand plays audio from stdin without opening a window.
var DefaultPlayerCommand = []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", "-"}

// Audio is synthesized speech.
type Audio struct {
	Data []byte
	// Format is the container format, e.g. "mp3".
	Format string
}

// Player outputs synthesized audio. Play returns once playback has started.
type Player interface {
	Play(ctx context.Context, audio Audio) error
}

// CommandPlayer pipes audio into an external player process.
type CommandPlayer struct {
	Command []string
	// OnExit, if set, receives the player's exit error.
	OnExit func(error)

	playing sync.WaitGroup
}

// Play starts the player and returns without waiting for it to finish.
func (p *CommandPlayer) Play(_ context.Context, audio Audio) error {
	command := p.Command
	if len(command) == 0 {
		command = DefaultPlayerCommand
	}

	// Playback is detached from the request context so it outlives Speak.
	cmd := exec.Command(command[0], command[1:]...)
	cmd.Stdin = bytes.NewReader(audio.Data)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start player %s: %w", command[0], err)
	}

	p.playing.Add(1)
	go func() {
		defer p.playing.Done()
		err := cmd.Wait()
		if p.OnExit != nil {
			p.OnExit(err)
		}
	}()
	return nil
}

// Wait blocks until every started player has exited.
func (p *CommandPlayer) Wait() {
	p.playing.Wait()
}

// FilePlayer writes each utterance to a file in Dir instead of playing it.
type FilePlayer struct {
	Dir string

	now func() time.Time
}

// Play writes the audio file.
func (p FilePlayer) Play(ctx context.Context, audio Audio) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}

	now := time.Now
	if p.now != nil {
		now = p.now
	}
	format := audio.Format
	if format == "" {
		format = "mp3"
	}
	name := "utterance-" + strconv.FormatInt(now().UnixNano(), 10) + "." + format

	if err := os.WriteFile(filepath.Join(p.Dir, name), audio.Data, 0o644); err != nil {
		return fmt.Errorf("write audio file: %w", err)
	}
	return nil
}
