package bot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"
)

const (
	sampleRate = 48000
	channels   = 2
	frameSize  = 960 // 20ms @ 48kHz
)

var soundExtensions = map[string]bool{
	".mp3":  true,
	".ogg":  true,
	".wav":  true,
	".flac": true,
	".m4a":  true,
}

// playCelebration joins the voice channel, plays one random sound from the
// configured directory and disconnects. No-op when no directory is set.
func (b *Bot) playCelebration(guildID, channelID int64) error {
	if b.config.SoundsDir == "" {
		return nil
	}

	soundPath, err := pickRandomSound(b.config.SoundsDir)
	if err != nil {
		return err
	}

	guildStr := strconv.FormatInt(guildID, 10)
	channelStr := strconv.FormatInt(channelID, 10)

	vc, err := b.session.ChannelVoiceJoin(guildStr, channelStr, false, true)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}
	defer func() {
		if err := vc.Disconnect(); err != nil {
			log.WithError(err).Debug("Failed to disconnect from voice")
		}
	}()

	log.WithFields(log.Fields{
		"guildID": guildID,
		"sound":   filepath.Base(soundPath),
	}).Info("Playing celebration sound")

	return b.streamSound(vc, soundPath)
}

// pickRandomSound returns a random playable file from dir
func pickRandomSound(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read sounds directory: %w", err)
	}

	var sounds []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if soundExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			sounds = append(sounds, filepath.Join(dir, entry.Name()))
		}
	}
	if len(sounds) == 0 {
		return "", fmt.Errorf("no sound files in %s", dir)
	}

	return sounds[rand.Intn(len(sounds))], nil
}

// streamSound decodes the file to PCM with ffmpeg and pushes Opus frames
// over the voice connection.
func (b *Bot) streamSound(vc *discordgo.VoiceConnection, path string) error {
	if vc == nil || !vc.Ready {
		return fmt.Errorf("voice connection not ready")
	}

	// ffmpeg handles whatever container the sound file is in
	cmd := exec.Command("ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"pipe:1",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create ffmpeg pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("failed to create opus encoder: %w", err)
	}

	vc.Speaking(true)
	defer vc.Speaking(false)

	streamErr := sendPCMFrames(stdout, encoder, vc.OpusSend)
	if streamErr != nil {
		// ffmpeg may still be blocked writing to the pipe; kill it so the
		// Wait below cannot hang.
		_ = cmd.Process.Kill()
	}
	if err := cmd.Wait(); streamErr == nil && err != nil {
		return fmt.Errorf("ffmpeg exited with error: %w", err)
	}

	return streamErr
}

// sendPCMFrames reads raw s16le PCM from r, encodes 20ms Opus frames and
// pushes them onto send until the stream ends. A trailing partial frame is
// dropped.
func sendPCMFrames(r io.Reader, encoder *gopus.Encoder, send chan<- []byte) error {
	pcmBuf := make([]byte, frameSize*channels*2)
	pcmInt16 := make([]int16, frameSize*channels)

	for {
		if _, err := io.ReadFull(r, pcmBuf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			return fmt.Errorf("failed to read PCM data: %w", err)
		}

		if err := binary.Read(bytes.NewReader(pcmBuf), binary.LittleEndian, pcmInt16); err != nil {
			return fmt.Errorf("failed to decode PCM frame: %w", err)
		}

		frame, err := encoder.Encode(pcmInt16, frameSize, frameSize*channels*2)
		if err != nil {
			return fmt.Errorf("failed to encode opus frame: %w", err)
		}

		select {
		case send <- frame:
		case <-time.After(5 * time.Second):
			return fmt.Errorf("timeout sending audio frame")
		}
	}
}
