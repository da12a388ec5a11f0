package audio

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sync"
)

// Player plays audio files with an external command.
type Player struct {
	// Command overrides the detected player. The file path is appended
	// as the last argument.
	Command []string
}

// Playback is a running playback task.
type Playback struct {
	done    chan struct{}
	cancel  context.CancelFunc
	err     error
	mu      sync.Mutex
	stopped bool
}

// Done is closed when playback has finished.
func (p *Playback) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until playback has finished. Playback ended by Stop is not
// an error.
func (p *Playback) Wait() error {
	<-p.done
	return p.err
}

// Stop ends playback and waits for the player to exit.
func (p *Playback) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	p.cancel()
	<-p.done
}

// Play starts playing path on a background goroutine. Cancelling ctx
// stops playback.
func (pl *Player) Play(ctx context.Context, path string) *Playback {
	ctx, cancel := context.WithCancel(ctx)
	p := &Playback{done: make(chan struct{}), cancel: cancel}

	if path == "" {
		p.finish(fmt.Errorf("no audio file"))
		return p
	}
	argv, err := pl.command(path)
	if err != nil {
		p.finish(err)
		return p
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		p.finish(fmt.Errorf("failed to start %s: %w", argv[0], err))
		return p
	}

	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		stopped := p.stopped
		p.mu.Unlock()
		switch {
		case stopped:
			err = nil
		case ctx.Err() != nil:
			err = ctx.Err()
		case err != nil:
			err = fmt.Errorf("%s: %w", argv[0], err)
		}
		p.finish(err)
	}()
	return p
}

func (p *Playback) finish(err error) {
	p.err = err
	p.cancel()
	close(p.done)
}

// command returns the player command line for path using platform-specific
// players.
func (pl *Player) command(path string) ([]string, error) {
	if len(pl.Command) > 0 {
		return append(append([]string(nil), pl.Command...), path), nil
	}

	switch runtime.GOOS {
	case "darwin":
		return []string{"afplay", path}, nil
	case "linux", "freebsd", "openbsd":
		// mpg123 first since it handles MP3 files best
		candidates := [][]string{
			{"mpg123", "-q"},
			{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
			{"play", "-q"},
			{"paplay"},
			{"aplay", "-q"},
		}
		for _, c := range candidates {
			if _, err := exec.LookPath(c[0]); err == nil {
				return append(c, path), nil
			}
		}
		return nil, fmt.Errorf("no audio player found. Install mpg123, ffplay, sox, paplay, or aplay")
	case "windows":
		return []string{"cmd", "/c", "start", "/min", path}, nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}
