package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"golang.org/x/term"

	"git.lost.host/meutraa/stepway/internal/config"
	"git.lost.host/meutraa/stepway/internal/game"
	"git.lost.host/meutraa/stepway/internal/library"
	"git.lost.host/meutraa/stepway/internal/render"
	"git.lost.host/meutraa/stepway/internal/score"
	"git.lost.host/meutraa/stepway/internal/session"
	"git.lost.host/meutraa/stepway/internal/theme"
)

// denom maps a note onto its beat grid line for coloring.
func denom(t, bpm float64) int {
	beat := t * bpm / 60.0
	for _, d := range []int{1, 2} {
		b := beat * float64(d)
		if math.Abs(b-math.Round(b)) < 1e-6 {
			return d
		}
	}
	return 4
}

func run() error {
	var r render.Renderer = &render.DefaultRenderer{}
	var th theme.Theme = &theme.DefaultTheme{}

	columns, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if nil != err {
		return fmt.Errorf("unable to get terminal size: %w", err)
	}
	rc, cc := rows, columns

	keyChannel, err := keyboard.GetKeys(128)
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); nil != err {
			fmt.Fprintln(os.Stderr, "unable to close keyboard", err)
		}
	}()

	store, err := score.OpenStore(*config.ScoresPath)
	if nil != err {
		return fmt.Errorf("unable to open run history: %w", err)
	}
	defer store.Close()

	// An audio file makes playback the clock. Without one the render
	// loop's wall time stands in.
	var position func() float64
	duration := config.Duration.Seconds()
	if *config.Audio != "" {
		f, err := os.Open(*config.Audio)
		if nil != err {
			return err
		}
		streamer, format, err := mp3.Decode(f)
		if nil != err {
			return err
		}
		defer streamer.Close()

		speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/60))
		duration = format.SampleRate.D(streamer.Len()).Seconds()
		position = func() float64 {
			speaker.Lock()
			p := streamer.Position()
			speaker.Unlock()
			return format.SampleRate.D(p).Seconds()
		}
		go func() {
			time.Sleep(*config.Delay)
			speaker.Play(streamer)
		}()
	}

	bus := session.NewBus()
	defer bus.Close()
	events := bus.Subscribe(256)

	s, err := session.New(session.Config{
		VideoID:    *config.VideoID,
		Difficulty: *config.Difficulty,
		Duration:   duration,
		AVOffset:   config.Offset.Seconds(),
		Lookahead:  config.Lookahead.Seconds(),
		Resolver:   library.NewResolver(*config.ChartsDir, *config.AutoDir),
		Store:      store,
	}, bus)
	if nil != err {
		return err
	}
	defer s.Stop()

	mc := cc >> 1
	cen := rc >> 1
	cis := &([...]int{
		mc - int(*config.ColumnSpacing)*3,
		mc - int(*config.ColumnSpacing),
		mc + int(*config.ColumnSpacing),
		mc + int(*config.ColumnSpacing)*3,
	})
	sideCol := cis[0] - 36
	if sideCol < 2 {
		sideCol = 2
	}

	if err := r.Init(); nil != err {
		return err
	}
	defer r.Deinit()

	s.Start()

	counts := make([]int, len(s.Difficulty().Windows))
	lastJudgement := ""
	covered := 0.0
	calibration := ""

	noteRows := map[float64]map[int]int{} // note time -> lane -> last row
	rowOf := func(n *game.Note) (int, bool) {
		lanes, ok := noteRows[n.Time]
		if !ok {
			return 0, false
		}
		row, ok := lanes[n.Lane]
		return row, ok
	}
	setRow := func(n *game.Note, row int) {
		lanes, ok := noteRows[n.Time]
		if !ok {
			lanes = map[int]int{}
			noteRows[n.Time] = lanes
		}
		lanes[n.Lane] = row
	}

	barRowAbs := rc - int(*config.BarRow)
	scroll := config.ScrollSeconds.Seconds()

	r.RenderLoop(*config.Delay, func(startTime time.Time, frameTime time.Duration) bool {
		playerTime := frameTime.Seconds()
		if nil != position {
			playerTime = position()
		}
		if playerTime < 0 {
			playerTime = 0
		}
		s.SetPlayerTime(playerTime)

		for i := 0; i < len(keyChannel); i++ {
			key := <-keyChannel
			switch {
			case key.Key == keyboard.KeyEsc:
				return false
			case key.Key == keyboard.KeySpace:
				if s.Paused() {
					s.Resume()
				} else {
					s.Pause()
				}
			default:
				if lane := config.KeyLane(key.Rune); lane >= 0 {
					s.Input(lane)
				}
			}
		}

		s.Tick()
		songTime := s.SongTime()
		if songTime > s.Duration()+2 {
			return false
		}

		for drained := false; !drained; {
			select {
			case ev := <-events:
				switch e := ev.(type) {
				case game.JudgementEvent:
					lastJudgement = th.JudgementLabel(e.Name)
				case game.StatsEvent:
					copy(counts, e.Counts)
				case game.CoverageEvent:
					covered = e.Covered
				case game.CalibrationEvent:
					if e.Locked {
						calibration = fmt.Sprintf("locked %.1f bpm", e.BPM)
					} else {
						calibration = "not locked"
					}
				case game.FailedEvent:
					r.AddDecoration(mc-3, cen, "\033[1;31mFAILED\033[0m", 240)
				}
			default:
				drained = true
			}
		}

		for i := 0; i < game.LaneCount; i++ {
			r.Fill(barRowAbs, cis[i], th.RenderHitField(i))
		}

		bpm := s.Model().BPM
		for _, n := range s.Visible(songTime-scroll, songTime+float64(barRowAbs)*scroll) {
			col := cis[n.Lane]
			if prev, ok := rowOf(&n.Note); ok && prev > 0 && prev < barRowAbs {
				r.Fill(prev, col, " ")
			}
			row := barRowAbs - int(math.Round((n.Time-songTime)/scroll))
			setRow(&n.Note, row)
			if n.Judged {
				continue
			}
			if row > 0 && row < barRowAbs {
				r.Fill(row, col, th.RenderNote(n.Lane, denom(n.Time, bpm)))
			}
		}

		snap := s.Snapshot()
		info := s.Info()
		r.Fill(2, sideCol, fmt.Sprintf("      Track:  %v", *config.VideoID))
		r.Fill(3, sideCol, fmt.Sprintf("      Chart:  %v %v", info.Kind, s.Difficulty().Name))
		r.Fill(4, sideCol, fmt.Sprintf("   Coverage:  %5.1f / %5.1f", covered, s.Duration()))
		r.Fill(5, sideCol, fmt.Sprintf("Calibration:  %v", calibration))
		r.Fill(7, sideCol, fmt.Sprintf("      Score:  %6v", snap.Score))
		r.Fill(8, sideCol, fmt.Sprintf("      Combo:  %6v", snap.Combo))
		r.Fill(9, sideCol, fmt.Sprintf("  Max Combo:  %6v", snap.MaxCombo))
		r.Fill(10, sideCol, fmt.Sprintf("       Life:  %6.2f", snap.Life))
		r.Fill(12, sideCol, lastJudgement)
		for i, w := range s.Difficulty().Windows {
			r.Fill(14+i, sideCol, fmt.Sprintf("%v:  %6v", th.JudgementLabel(w.Name), counts[i]))
		}

		return true
	})
	_ = <-keyChannel
	return nil
}
