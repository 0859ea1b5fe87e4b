package orrery

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
)

// ErrRecorderClosed is returned when rendering into a closed recorder.
var ErrRecorderClosed = errors.New("recorder closed")

// ExportConfig configures the recording of frames.
type ExportConfig struct {
	Filename  string    `mapstructure:"filename"`
	OutputDir string    `mapstructure:"output_dir"`
	AsCSV     bool      `mapstructure:"csv"`
	AsXYZ     bool      `mapstructure:"xyz"`
	Every     uint64    `mapstructure:"every"` // Record one frame every so many ticks.
	Timestamp bool      `mapstructure:"timestamp"`
	Epoch     time.Time `mapstructure:"-"` // Simulated date of tick zero.
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV && !c.AsXYZ
}

// TickJD returns the simulated Julian date of a tick: one Earth year lasts TicksPerYear ticks.
func TickJD(epoch time.Time, tick uint64) float64 {
	return julian.TimeToJD(epoch.UTC()) + float64(tick)*base.JulianYear/TicksPerYear
}

// Recorder is a Renderer streaming frames to CSV and xyz files from its own goroutine.
// Render blocks when the buffer is full so that no frame is lost.
type Recorder struct {
	conf      ExportConfig
	frames    chan Frame
	wg        sync.WaitGroup
	closeMu   sync.RWMutex // Held for reading while sending on frames.
	closed    bool
	reported  atomic.Bool
	mu        sync.Mutex
	err       error
	csvFile   *os.File
	csvWriter *csv.Writer
	xyzFiles  map[string]*bufio.Writer
	xyzRaw    []*os.File
	files     []string
	logger    kitlog.Logger
}

// NewRecorder creates the output files and starts streaming.
func NewRecorder(conf ExportConfig, logger kitlog.Logger) (*Recorder, error) {
	if conf.IsUseless() {
		return nil, errors.New("export config enables neither csv nor xyz")
	}
	if conf.Every == 0 {
		conf.Every = 1
	}
	if conf.Filename == "" {
		conf.Filename = "orrery"
	}
	if conf.OutputDir == "" {
		conf.OutputDir = "."
	}
	if conf.Epoch.IsZero() {
		conf.Epoch = time.Now().UTC()
	}
	if conf.Timestamp {
		t := time.Now()
		conf.Filename = fmt.Sprintf("%s-%d-%02d-%02dT%02d.%02d.%02d", conf.Filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	r := &Recorder{conf: conf, frames: make(chan Frame, 1000), xyzFiles: make(map[string]*bufio.Writer), logger: kitlog.With(logger, "subsys", "export")}
	if conf.AsCSV {
		if err := r.createCSV(); err != nil {
			return nil, err
		}
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.stream()
	}()
	return r, nil
}

func (r *Recorder) createCSV() error {
	name := filepath.Join(r.conf.OutputDir, fmt.Sprintf("orrery-%s.csv", r.conf.Filename))
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	// Header
	fmt.Fprintf(f, `# Creation date (UTC): %s
# Simulation epoch (UTC): %s
# One Earth year lasts %d ticks.
`, time.Now().UTC(), r.conf.Epoch.UTC(), TicksPerYear)
	r.csvFile = f
	r.csvWriter = csv.NewWriter(f)
	r.files = append(r.files, name)
	return r.csvWriter.Write([]string{"tick", "jd", "name", "x", "y", "z", "rotY"})
}

func (r *Recorder) xyzWriter(body string) (*bufio.Writer, error) {
	if w, ok := r.xyzFiles[body]; ok {
		return w, nil
	}
	name := filepath.Join(r.conf.OutputDir, fmt.Sprintf("orrery-%s-%s.xyz", r.conf.Filename, strings.ReplaceAll(body, " ", "_")))
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, `# Creation date (UTC): %s
# Records are <jd> <x> <y> <z> for %s
#   Simulation epoch (UTC): %s
`, time.Now().UTC(), body, r.conf.Epoch.UTC())
	r.xyzFiles[body] = w
	r.xyzRaw = append(r.xyzRaw, f)
	r.mu.Lock()
	r.files = append(r.files, name)
	r.mu.Unlock()
	return w, nil
}

// Render implements the Renderer interface. Once a write failed, the error is returned
// by the next call only and later frames are dropped.
func (r *Recorder) Render(f Frame) error {
	r.closeMu.RLock()
	defer r.closeMu.RUnlock()
	if r.closed {
		return ErrRecorderClosed
	}
	if err := r.Err(); err != nil {
		if r.reported.CompareAndSwap(false, true) {
			return err
		}
		return nil
	}
	if f.Tick%r.conf.Every != 0 {
		return nil
	}
	r.frames <- f
	return nil
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Recorder) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err == nil {
		r.err = err
		r.logger.Log("level", "critical", "err", err)
	}
}

func (r *Recorder) stream() {
	var last uint64
	for f := range r.frames {
		last = f.Tick
		jd := TickJD(r.conf.Epoch, f.Tick)
		for _, b := range f.Bodies {
			if r.csvWriter != nil {
				if err := r.csvWriter.Write([]string{
					strconv.FormatUint(f.Tick, 10),
					strconv.FormatFloat(jd, 'f', 6, 64),
					b.Name,
					strconv.FormatFloat(b.Position[0], 'f', 6, 64),
					strconv.FormatFloat(b.Position[1], 'f', 6, 64),
					strconv.FormatFloat(b.Position[2], 'f', 6, 64),
					strconv.FormatFloat(b.RotationY, 'f', 6, 64),
				}); err != nil {
					r.setErr(err)
				}
			}
			if r.conf.AsXYZ {
				w, err := r.xyzWriter(b.Name)
				if err != nil {
					r.setErr(err)
					continue
				}
				fmt.Fprintf(w, "%f %f %f %f\n", jd, b.Position[0], b.Position[1], b.Position[2])
			}
		}
	}
	// The channel is closed, hence the recording is over.
	end := julian.JDToTime(TickJD(r.conf.Epoch, last)).UTC()
	if r.csvWriter != nil {
		r.csvWriter.Flush()
		if err := r.csvWriter.Error(); err != nil {
			r.setErr(err)
		}
		fmt.Fprintf(r.csvFile, "# Simulation time end (UTC): %s\n", end)
		if err := r.csvFile.Close(); err != nil {
			r.setErr(err)
		}
	}
	for _, w := range r.xyzFiles {
		fmt.Fprintf(w, "# Simulation time end (UTC): %s\n", end)
		if err := w.Flush(); err != nil {
			r.setErr(err)
		}
	}
	for _, f := range r.xyzRaw {
		if err := f.Close(); err != nil {
			r.setErr(err)
		}
	}
	r.logger.Log("level", "info", "status", "finished", "files", len(r.Files()), "last_tick", last)
}

// Close stops the recording, flushes every file and returns the first write error.
func (r *Recorder) Close() error {
	r.closeMu.Lock()
	if r.closed {
		r.closeMu.Unlock()
		return r.Err()
	}
	r.closed = true
	close(r.frames)
	r.closeMu.Unlock()
	r.wg.Wait()
	return r.Err()
}

// Files returns the paths written so far. Only complete after Close.
func (r *Recorder) Files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.files...)
}
