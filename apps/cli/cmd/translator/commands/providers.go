package commands

import (
	"os/exec"
	"strings"

	"unitranslate/packages/backend/asr"
	"unitranslate/packages/backend/tts"

	"go.uber.org/zap"
)

// speechProviders holds the speech providers detected for this host.
type speechProviders struct {
	recognizer  asr.Recognizer
	synthesizer tts.Synthesizer
	player      *tts.CommandPlayer
}

// Wait blocks until started playback has finished.
func (p speechProviders) Wait() {
	if p.player != nil {
		p.player.Wait()
	}
}

func detectSpeech(cfg cliConfig, logger *zap.SugaredLogger) speechProviders {
	if cfg.OpenAIKey == "" {
		reason := "OPENAI_API_KEY not set"
		return speechProviders{
			recognizer:  asr.Unavailable{Reason: reason},
			synthesizer: tts.Unavailable{Reason: reason},
		}
	}

	var p speechProviders
	p.recognizer = newRecognizer(cfg, logger)
	p.synthesizer, p.player = newSynthesizer(cfg, logger)
	return p
}

func newRecognizer(cfg cliConfig, logger *zap.SugaredLogger) asr.Recognizer {
	command := strings.Fields(cfg.Recorder)
	if len(command) == 0 {
		command = asr.DefaultRecorderCommand
	}
	if _, err := exec.LookPath(command[0]); err != nil {
		logger.Infow("speech recognition disabled", "recorder", command[0], "error", err)
		return asr.Unavailable{Reason: "recorder " + command[0] + " not found"}
	}

	recognizer, err := asr.NewWhisperRecognizer(cfg.OpenAIKey, cfg.OpenAIBaseURL, asr.CommandSource{Command: command})
	if err != nil {
		return asr.Unavailable{Reason: err.Error()}
	}
	return recognizer
}

func newSynthesizer(cfg cliConfig, logger *zap.SugaredLogger) (tts.Synthesizer, *tts.CommandPlayer) {
	var player tts.Player
	var commandPlayer *tts.CommandPlayer

	if cfg.TTSOutputDir != "" {
		player = tts.FilePlayer{Dir: cfg.TTSOutputDir}
	} else {
		command := strings.Fields(cfg.Player)
		if len(command) == 0 {
			command = tts.DefaultPlayerCommand
		}
		if _, err := exec.LookPath(command[0]); err != nil {
			logger.Infow("speech synthesis disabled", "player", command[0], "error", err)
			return tts.Unavailable{Reason: "player " + command[0] + " not found"}, nil
		}
		commandPlayer = &tts.CommandPlayer{
			Command: command,
			OnExit: func(err error) {
				if err != nil {
					logger.Warnw("audio player exited with error", "error", err)
				}
			},
		}
		player = commandPlayer
	}

	synth, err := tts.NewOpenAISynthesizer(cfg.OpenAIKey, cfg.OpenAIBaseURL, player)
	if err != nil {
		return tts.Unavailable{Reason: err.Error()}, nil
	}
	return synth, commandPlayer
}
