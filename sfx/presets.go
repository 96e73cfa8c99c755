package sfx

import (
	"retrowave/audio"
	"retrowave/synth"
)

const (
	CategoryUI         = "UI"
	CategoryFeedback   = "Feedback"
	CategoryWeapons    = "Weapons"
	CategoryPickups    = "Pickups"
	CategoryMovement   = "Movement"
	CategoryPercussion = "Percussion"
	CategoryAmbience   = "Ambience"
	CategoryAlerts     = "Alerts"
	CategoryGameState  = "Game State"
	CategorySciFi      = "Sci-Fi"
)

type preset struct {
	name  string
	meta  Metadata
	graph func() *synth.Graph
}

// Render returns a generator that builds a fresh graph, renders it at the
// context's sample rate and schedules it.
func Render(build func() *synth.Graph) Generator {
	return func(ac audio.Context) error {
		buf, err := build().Render(ac.SampleRate())
		if err != nil {
			return err
		}
		return ac.Schedule(buf)
	}
}

// NewCatalogue returns a registry holding every built-in preset.
func NewCatalogue(opts ...Option) *Registry {
	r := NewRegistry(opts...)
	for _, p := range presets {
		r.Register(p.name, p.meta, Render(p.graph))
	}
	return r
}

// decay is the common "start at peak, exponential fade to floor" envelope.
func decay(peak, floor, d float64) *synth.Param {
	return synth.P(peak).ExpTo(floor, d)
}

// sequence plays one oscillator per note back to back, with gap seconds of
// silence between notes.
func sequence(w synth.Wave, freqs, durs []float64, gap float64) []synth.Source {
	var out []synth.Source
	t := 0.0
	for i, f := range freqs {
		out = append(out, synth.Osc(w, synth.P(f)).From(t).Until(t+durs[i]))
		t += durs[i] + gap
	}
	return out
}

var presets = []preset{
	{"correct", Metadata{"Short, rising sound for correct actions or confirmations.", "✅", CategoryFeedback}, func() *synth.Graph {
		// C6 to F6
		freq := synth.P(1046.50).LinearTo(1396.91, 0.04)
		return synth.Chain(synth.Osc(synth.Square, freq).Until(0.1), synth.Amp(decay(0.25, 0.0001, 0.1)))
	}},
	{"error", Metadata{"Descending pitch sound for errors or incorrect actions.", "❌", CategoryFeedback}, func() *synth.Graph {
		// E3 to A2
		freq := synth.P(164.81).ExpTo(110, 0.15)
		env := synth.P(0).LinearTo(0.3, 0.025).ExpTo(0.0001, 0.25)
		return synth.Chain(synth.Osc(synth.Sawtooth, freq).Until(0.25), synth.Amp(env))
	}},
	{"laserShoot", Metadata{"Classic quick laser pew sound.", "💥", CategoryWeapons}, func() *synth.Graph {
		freq := synth.P(880).ExpTo(220, 0.08)
		return synth.Chain(synth.Osc(synth.Square, freq).Until(0.08), synth.Amp(decay(0.2, 0.0001, 0.08)))
	}},
	{"coinPickup", Metadata{"Bright, short sound for collecting items.", "💰", CategoryPickups}, func() *synth.Graph {
		// G6 to C7
		freq := synth.P(1567.98).LinearTo(2093, 0.042)
		return synth.Chain(synth.Osc(synth.Triangle, freq).Until(0.07), synth.Amp(decay(0.3, 0.0001, 0.07)))
	}},
	{"jump", Metadata{"A short, upward-pitching sound for jumping actions.", "🤸", CategoryMovement}, func() *synth.Graph {
		freq := synth.P(440).ExpTo(880, 0.12)
		return synth.Chain(synth.Osc(synth.Triangle, freq).Until(0.15), synth.Amp(decay(0.3, 0.0001, 0.15)))
	}},
	{"explosion", Metadata{"A noisy burst sound for explosions.", "💣", CategoryWeapons}, func() *synth.Graph {
		cutoff := synth.P(2000).ExpTo(100, 0.8)
		return synth.Chain(synth.WhiteNoise(1), synth.LP(cutoff, 1), synth.Amp(decay(0.8, 0.01, 1)))
	}},
	{"powerUp", Metadata{"A bright, ascending arpeggio for power-ups.", "⭐", CategoryPickups}, func() *synth.Graph {
		// C5 E5 G5 C6
		notes := sequence(synth.Square, []float64{523.25, 659.25, 783.99, 1046.50}, []float64{0.08, 0.08, 0.08, 0.08}, 0)
		return synth.NewGraph(synth.NewBus(notes...).Through(synth.Amp(decay(0.2, 0.0001, 0.5))))
	}},
	{"hitHurt", Metadata{"A short, impactful sound for taking damage.", "💔", CategoryFeedback}, func() *synth.Graph {
		freq := synth.P(220).ExpTo(110, 0.084)
		return synth.Chain(synth.Osc(synth.Sawtooth, freq).Until(0.12), synth.Amp(decay(0.4, 0.0001, 0.12)))
	}},
	{"selectHover", Metadata{"A very short, subtle sound for UI selection or hover.", "🖱️", CategoryUI}, func() *synth.Graph {
		return synth.Chain(synth.Osc(synth.Sine, synth.P(1200)).Until(0.05), synth.Amp(decay(0.15, 0.0001, 0.05)))
	}},
	{"uiClick", Metadata{"A sharp click sound for UI interactions.", "🔘", CategoryUI}, func() *synth.Graph {
		// roughly 1ms of noise at the head of a silent buffer
		click := &synth.Noise{Length: 0.05, Amplitude: 0.25, Impulse: 50, Stop: 0.05}
		return synth.Chain(click, synth.Amp(decay(0.5, 0.01, 0.05)))
	}},
	{"alert", Metadata{"A repeating high-pitched beep for alerts.", "🚨", CategoryAlerts}, func() *synth.Graph {
		env := synth.P(0).
			LinearTo(0.3, 0.01).Set(0.3, 0.1).LinearTo(0, 0.11).
			Set(0, 0.2).
			LinearTo(0.3, 0.21).Set(0.3, 0.3).LinearTo(0, 0.31)
		return synth.Chain(synth.Osc(synth.Sine, synth.P(1500)).Until(0.4), synth.Amp(env))
	}},
	{"kickDrum", Metadata{"A synthesized bass drum sound.", "🥁", CategoryPercussion}, func() *synth.Graph {
		freq := synth.P(150).ExpTo(40, 0.1125)
		return synth.Chain(synth.Osc(synth.Sine, freq).Until(0.15), synth.Amp(decay(1, 0.001, 0.15)))
	}},
	{"snareDrum", Metadata{"A synthesized snare drum sound using noise.", "🥁", CategoryPercussion}, func() *synth.Graph {
		noise := synth.NewBus(synth.WhiteNoise(0.2)).Through(synth.HP(synth.Const(1000), 1), synth.Amp(decay(1, 0.01, 0.15)))
		body := synth.NewBus(synth.Osc(synth.Triangle, synth.Const(180)).Until(0.1)).Through(synth.Amp(decay(0.3, 0.01, 0.1)))
		return synth.NewGraph(noise, body)
	}},
	{"hiHat", Metadata{"A synthesized hi-hat cymbal sound.", "🥁", CategoryPercussion}, func() *synth.Graph {
		const fundamental = 40
		var partials []synth.Source
		for _, ratio := range []float64{2, 3, 4.16, 5.43, 6.79, 8.21} {
			partials = append(partials, synth.Osc(synth.Square, synth.Const(fundamental*ratio)).Until(0.08))
		}
		bus := synth.NewBus(partials...).Through(synth.Amp(decay(0.3, 0.0001, 0.08)), synth.BP(synth.Const(10000), 0.5))
		return synth.NewGraph(bus)
	}},
	{"ambiencePad", Metadata{"A soft, sustained pad sound for ambience.", "🎶", CategoryAmbience}, func() *synth.Graph {
		root := synth.Osc(synth.Sine, synth.Const(220)).Until(3)
		fifth := synth.Osc(synth.Sine, synth.Const(330)).Until(3)
		fifth.Detune = 5
		// attack, sustain, release
		env := synth.P(0).LinearTo(0.2, 0.5).Set(0.2, 1.5).LinearTo(0, 3)
		return synth.NewGraph(synth.NewBus(root, fifth).Through(synth.Amp(env), synth.LP(synth.Const(800), 1)))
	}},
	{"engineHum", Metadata{"A low, steady hum like an engine idling.", "⚙️", CategoryAmbience}, func() *synth.Graph {
		a := synth.Osc(synth.Sawtooth, synth.Const(60)).Until(1.5)
		b := synth.Osc(synth.Sawtooth, synth.Const(65)).Until(1.5)
		cutoff := synth.LP(synth.Const(150), 5).Modulate(synth.LFO{Wave: synth.Sine, Rate: 5, Depth: 10})
		env := synth.P(0.3).Set(0.3, 1.45).LinearTo(0, 1.5)
		return synth.NewGraph(synth.NewBus(a, b).Through(cutoff, synth.Amp(env)))
	}},
	{"zap", Metadata{"A short, crackling electric zap sound.", "⚡", CategoryWeapons}, func() *synth.Graph {
		freq := synth.P(100).LinearTo(3000, 0.024).LinearTo(500, 0.08)
		return synth.Chain(synth.Osc(synth.Square, freq).Until(0.08),
			synth.Amp(decay(0.5, 0.01, 0.08)),
			synth.BP(synth.Const(1500), 20))
	}},
	{"blip", Metadata{"A short, high-pitched blip sound.", "📟", CategoryUI}, func() *synth.Graph {
		return synth.Chain(synth.Osc(synth.Square, synth.P(1800)).Until(0.06), synth.Amp(decay(0.2, 0.0001, 0.06)))
	}},
	{"whoosh", Metadata{"A short whooshing sound, like a sliding door.", "🚪", CategoryMovement}, func() *synth.Graph {
		sweep := synth.BP(synth.P(300).ExpTo(3000, 0.24), 2)
		env := synth.P(0.4).LinearTo(0.0001, 0.3)
		return synth.Chain(synth.WhiteNoise(0.3), sweep, synth.Amp(env))
	}},
	{"step", Metadata{"A light tap sound for footsteps.", "👣", CategoryMovement}, func() *synth.Graph {
		return synth.Chain(synth.Osc(synth.Triangle, synth.P(300)).Until(0.08),
			synth.LP(synth.Const(600), 1),
			synth.Amp(decay(0.25, 0.001, 0.08)))
	}},
	{"collectItem", Metadata{"A slightly different item collection sound.", "💎", CategoryPickups}, func() *synth.Graph {
		// C6 to G6
		freq := synth.P(1046.50).LinearTo(1567.98, 0.07)
		return synth.Chain(synth.Osc(synth.Sine, freq).Until(0.1), synth.Amp(decay(0.3, 0.0001, 0.1)))
	}},
	{"warningBeep", Metadata{"A short, medium-pitch warning beep.", "⚠️", CategoryAlerts}, func() *synth.Graph {
		return synth.Chain(synth.Osc(synth.Sawtooth, synth.P(880)).Until(0.15), synth.Amp(decay(0.25, 0.0001, 0.15)))
	}},
	{"successFanfare", Metadata{"A short, positive fanfare for success.", "🎉", CategoryGameState}, func() *synth.Graph {
		notes := sequence(synth.Triangle, []float64{523.25, 659.25, 783.99, 1046.50}, []float64{0.1, 0.1, 0.1, 0.3}, 0.02)
		return synth.NewGraph(synth.NewBus(notes...).Through(synth.Amp(decay(0.25, 0.0001, 0.7))))
	}},
	{"gameOver", Metadata{"A descending, sad sound for game over.", "💀", CategoryGameState}, func() *synth.Graph {
		// G5 Eb5 C5
		notes := sequence(synth.Sawtooth, []float64{783.99, 622.25, 523.25}, []float64{0.4, 0.4, 0.6}, 0.05)
		return synth.NewGraph(synth.NewBus(notes...).Through(synth.Amp(decay(0.3, 0.0001, 1.5))))
	}},
	{"laserCharge", Metadata{"A rising pitch sound indicating a charge-up.", "🔋", CategoryWeapons}, func() *synth.Graph {
		freq := synth.P(100).LinearTo(1200, 0.8)
		cutoff := synth.P(200).LinearTo(4000, 0.8)
		env := synth.P(0.1).LinearTo(0.4, 0.64).ExpTo(0.01, 0.8)
		return synth.Chain(synth.Osc(synth.Sawtooth, freq).Until(0.8), synth.LP(cutoff, 3), synth.Amp(env))
	}},
	{"teleport", Metadata{"A sci-fi teleportation sound effect.", "🌀", CategorySciFi}, func() *synth.Graph {
		osc := synth.Osc(synth.Sine, synth.P(400).LinearTo(1600, 0.5)).Until(0.5).
			Modulate(synth.LFO{Wave: synth.Sawtooth, Rate: 30, Depth: 50})
		env := synth.P(0).LinearTo(0.3, 0.1).LinearTo(0, 0.5)
		return synth.Chain(osc, synth.Amp(env))
	}},
	{"bubblePop", Metadata{"A soft, popping sound like a bubble.", "💧", CategoryUI}, func() *synth.Graph {
		freq := synth.P(900).ExpTo(400, 0.08)
		return synth.Chain(synth.Osc(synth.Sine, freq).Until(0.1), synth.Amp(decay(0.3, 0.0001, 0.1)))
	}},
	{"lowRumble", Metadata{"A deep, sustained rumbling sound.", "🌋", CategoryAmbience}, func() *synth.Graph {
		noise := synth.WhiteNoise(2).Looping()
		env := synth.P(0).LinearTo(0.4, 0.5).Set(0.4, 1.5).LinearTo(0, 2)
		return synth.Chain(noise, synth.LP(synth.Const(80), 10), synth.Amp(env))
	}},
	{"glitch", Metadata{"A short, erratic glitch sound.", "👾", CategorySciFi}, func() *synth.Graph {
		const d = 0.1
		burst := synth.NewBus(synth.WhiteNoise(d / 2)).Through(synth.Amp(decay(0.2, 0.01, d/2)))
		freq := synth.Const(2000).Set(2000, d/3).LinearTo(500, d)
		env := synth.Const(0.2).Set(0.2, d/3).ExpTo(0.01, d)
		tone := synth.NewBus(synth.Osc(synth.Square, freq).From(d / 3).Until(d)).Through(synth.Amp(env))
		return synth.NewGraph(burst, tone)
	}},
	{"alarmLoop", Metadata{"A two-tone siren, six cycles long.", "🚨", CategoryAlerts}, func() *synth.Graph {
		const cycles, period = 6, 0.5
		freq := synth.Const(880)
		for i := range cycles {
			t := float64(i) * period
			freq.Set(880, t).Set(660, t+period/2)
		}
		end := cycles * period
		env := synth.P(0).LinearTo(0.2, 0.02).Set(0.2, end-0.05).LinearTo(0, end)
		return synth.Chain(synth.Osc(synth.Square, freq).Until(end), synth.LP(synth.Const(2500), 0), synth.Amp(env))
	}},
}
