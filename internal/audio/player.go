package audio

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/chadiek/pitchcoach/internal/artifact"
)

// ExecPlayer plays published reply artifacts with whatever command-line audio
// player the host provides.
type ExecPlayer struct {
	Artifacts *artifact.LocalStore
}

// candidate players in preference order; args follow the binary name.
var players = [][]string{
	{"afplay"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"mpg123", "-q"},
}

func (p *ExecPlayer) Play(ctx context.Context, outputID string) error {
	path := p.Artifacts.Path(outputID)
	for _, cand := range players {
		bin, err := exec.LookPath(cand[0])
		if err != nil {
			continue
		}
		args := append(append([]string{}, cand[1:]...), path)
		return exec.CommandContext(ctx, bin, args...).Run()
	}
	return fmt.Errorf("no audio player found (tried afplay, ffplay, mpg123)")
}
