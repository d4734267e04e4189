package engine

import (
	"fmt"
	"strconv"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"

	"github.com/sappelhoff/ecomp-experiment/datalog"
	"github.com/sappelhoff/ecomp-experiment/monitor"
	"github.com/sappelhoff/ecomp-experiment/trials"
)

// Survey rows, in display order.
const (
	fieldType = iota
	fieldStream
	fieldID
	fieldAge
	fieldSex
	fieldHandedness
	fieldMonitor
)

type surveyField struct {
	Label    string
	Options  []string
	Selected int
	// ExperimentOnly rows are only asked for experiment runs.
	ExperimentOnly bool
}

func (f *surveyField) Value() string {
	return f.Options[f.Selected]
}

func intOptions(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return out
}

func indexOf(options []string, v string) int {
	for i, o := range options {
		if o == v {
			return i
		}
	}
	return 0
}

// cycle steps through n options with wrap around.
func cycle(i, n, delta int) int {
	return ((i+delta)%n + n) % n
}

// surveyFields builds the form from cfg, preselecting the cached answers.
func surveyFields(cfg *Config) []surveyField {
	fields := []surveyField{
		fieldType:       {Label: "Type:", Options: []string{"experiment", "training", "test", "instructions"}},
		fieldStream:     {Label: "Stream:", Options: []string{"single", "dual"}},
		fieldID:         {Label: "ID:", Options: intOptions(1, 99), ExperimentOnly: true},
		fieldAge:        {Label: "Age:", Options: intOptions(18, 59), ExperimentOnly: true},
		fieldSex:        {Label: "Sex:", Options: []string{"Male", "Female", "Other"}, ExperimentOnly: true},
		fieldHandedness: {Label: "Handedness:", Options: []string{"Right", "Left", "Ambidextrous"}, ExperimentOnly: true},
		fieldMonitor:    {Label: "Monitor:", Options: monitor.Names(cfg.Monitors)},
	}
	fields[fieldType].Selected = indexOf(fields[fieldType].Options, string(cfg.RunType))
	fields[fieldStream].Selected = indexOf(fields[fieldStream].Options, string(cfg.Stream))
	fields[fieldID].Selected = indexOf(fields[fieldID].Options, strconv.Itoa(cfg.Participant.ID))
	fields[fieldAge].Selected = indexOf(fields[fieldAge].Options, strconv.Itoa(cfg.Participant.Age))
	fields[fieldSex].Selected = indexOf(fields[fieldSex].Options, cfg.Participant.Sex)
	fields[fieldHandedness].Selected = indexOf(fields[fieldHandedness].Options, cfg.Participant.Handedness)
	fields[fieldMonitor].Selected = indexOf(fields[fieldMonitor].Options, cfg.Monitor)
	return fields
}

// applySurvey writes the answers back into cfg. Participant data is only
// kept for experiment runs.
func applySurvey(cfg *Config, fields []surveyField) {
	cfg.RunType = datalog.RunType(fields[fieldType].Value())
	cfg.Stream = trials.Stream(fields[fieldStream].Value())
	cfg.Monitor = fields[fieldMonitor].Value()
	cfg.Participant = datalog.Participant{}
	if cfg.RunType == datalog.Experiment {
		cfg.Participant.ID, _ = strconv.Atoi(fields[fieldID].Value())
		cfg.Participant.Age, _ = strconv.Atoi(fields[fieldAge].Value())
		cfg.Participant.Sex = fields[fieldSex].Value()
		cfg.Participant.Handedness = fields[fieldHandedness].Value()
	}
}

func renderLabel(renderer *sdl.Renderer, font *ttf.Font, text string, x, y float32, color sdl.Color) {
	surf, err := font.RenderTextBlended(text, color)
	if err != nil || surf == nil {
		return
	}
	tex, err := renderer.CreateTextureFromSurface(surf)
	if err == nil {
		r := sdl.FRect{X: x, Y: y, W: float32(surf.W), H: float32(surf.H)}
		renderer.RenderTexture(tex, nil, &r)
		tex.Destroy()
	}
	surf.Destroy()
}

func rowY(i int) float32 {
	return float32(40 + i*60)
}

// RunGuiSetup shows the survey form. It returns false when the form was
// cancelled or the window closed.
func RunGuiSetup(cfg *Config) bool {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		fmt.Printf("SDL_Init Error: %v\n", err)
		return false
	}
	defer sdl.Quit()

	if err := ttf.Init(); err != nil {
		fmt.Printf("TTF_Init Error: %v\n", err)
		return false
	}
	defer ttf.Quit()

	window, renderer, err := sdl.CreateWindowAndRenderer("eComp Experiment", 700, 620, 0)
	if err != nil {
		fmt.Printf("CreateWindowAndRenderer Error: %v\n", err)
		return false
	}
	defer window.Destroy()
	defer renderer.Destroy()

	fontPath := GetDefaultFontPath()
	if fontPath == "" {
		fmt.Println("Error: No default font found for GUI setup")
		return false
	}
	guiFont, err := ttf.OpenFont(fontPath, 18)
	if err != nil {
		fmt.Printf("Failed to load GUI font: %v\n", err)
		return false
	}
	defer guiFont.Close()

	fields := surveyFields(cfg)
	okBtn := sdl.FRect{X: 200, Y: 520, W: 120, H: 40}
	cancelBtn := sdl.FRect{X: 380, Y: 520, W: 120, H: 40}
	fullCheck := sdl.FRect{X: 50, Y: 460, W: 20, H: 20}

	inside := func(r sdl.FRect, x, y float32) bool {
		return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
	}
	visible := func(i int) bool {
		return !fields[i].ExperimentOnly || fields[fieldType].Value() == string(datalog.Experiment)
	}

	for {
		var e sdl.Event
		for sdl.PollEvent(&e) {
			switch e.Type {
			case sdl.EVENT_QUIT:
				return false
			case sdl.EVENT_KEY_DOWN:
				switch e.KeyboardEvent().Key {
				case sdl.K_ESCAPE:
					return false
				case sdl.K_RETURN:
					applySurvey(cfg, fields)
					cfg.SaveCache()
					return true
				}
			case sdl.EVENT_MOUSE_BUTTON_DOWN:
				me := e.MouseButtonEvent()
				mx, my := me.X, me.Y
				for i := range fields {
					if !visible(i) || my < rowY(i) || my > rowY(i)+30 {
						continue
					}
					if mx >= 250 && mx <= 280 {
						fields[i].Selected = cycle(fields[i].Selected, len(fields[i].Options), -1)
					} else if mx >= 520 && mx <= 550 {
						fields[i].Selected = cycle(fields[i].Selected, len(fields[i].Options), 1)
					}
				}
				if inside(fullCheck, mx, my) {
					cfg.Fullscreen = !cfg.Fullscreen
				}
				if inside(okBtn, mx, my) {
					applySurvey(cfg, fields)
					cfg.SaveCache()
					return true
				}
				if inside(cancelBtn, mx, my) {
					return false
				}
			}
		}

		renderer.SetDrawColor(240, 240, 240, 255)
		renderer.Clear()
		black := sdl.Color{R: 0, G: 0, B: 0, A: 255}
		white := sdl.Color{R: 255, G: 255, B: 255, A: 255}

		for i := range fields {
			if !visible(i) {
				continue
			}
			y := rowY(i)
			renderLabel(renderer, guiFont, fields[i].Label, 50, y+4, black)

			box := sdl.FRect{X: 290, Y: y, W: 220, H: 30}
			renderer.SetDrawColor(255, 255, 255, 255)
			renderer.RenderFillRect(&box)
			renderer.SetDrawColor(180, 180, 180, 255)
			renderer.RenderRect(&box)
			renderLabel(renderer, guiFont, fields[i].Value(), 300, y+4, black)

			for _, b := range []struct {
				x     float32
				label string
			}{{250, "<"}, {520, ">"}} {
				btn := sdl.FRect{X: b.x, Y: y, W: 30, H: 30}
				renderer.SetDrawColor(200, 200, 200, 255)
				renderer.RenderFillRect(&btn)
				renderer.SetDrawColor(0, 0, 0, 255)
				renderer.RenderRect(&btn)
				renderLabel(renderer, guiFont, b.label, b.x+9, y+4, black)
			}
		}

		// Fullscreen checkbox
		renderer.SetDrawColor(255, 255, 255, 255)
		renderer.RenderFillRect(&fullCheck)
		renderer.SetDrawColor(0, 0, 0, 255)
		renderer.RenderRect(&fullCheck)
		if cfg.Fullscreen {
			mark := sdl.FRect{X: 54, Y: 464, W: 12, H: 12}
			renderer.SetDrawColor(0, 150, 0, 255)
			renderer.RenderFillRect(&mark)
		}
		renderLabel(renderer, guiFont, "Fullscreen mode", 80, 460, black)

		renderer.SetDrawColor(0, 150, 0, 255)
		renderer.RenderFillRect(&okBtn)
		renderLabel(renderer, guiFont, "OK", okBtn.X+45, okBtn.Y+10, white)
		renderer.SetDrawColor(170, 40, 40, 255)
		renderer.RenderFillRect(&cancelBtn)
		renderLabel(renderer, guiFont, "Cancel", cancelBtn.X+30, cancelBtn.Y+10, white)

		renderer.Present()
		sdl.Delay(10)
	}
}
