package simulation

import (
	"log"

	"github.com/rs/xid"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem"
	"github.com/sarchlab/vmsim/mem/backingstore"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/trace"
	"github.com/sarchlab/vmsim/vm"
	"github.com/sarchlab/vmsim/vm/mmu"
	"github.com/sarchlab/vmsim/vm/tlb"
)

// Builder can be used to build a simulation.
type Builder struct {
	backingStorePath string
	recordingOn      bool
	outputFileName   string
	traceLogger      *log.Logger
	monitorOn        bool
	monitorPort      int
	openBrowser      bool
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		backingStorePath: "BACKING_STORE.bin",
	}
}

// WithBackingStore sets the path of the file that backs the pages.
func (b Builder) WithBackingStore(path string) Builder {
	b.backingStorePath = path
	return b
}

// WithRecording sets the simulation to record every translation into a
// SQLite database.
func (b Builder) WithRecording() Builder {
	b.recordingOn = true
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithTraceLogger sets the logger that every translation event is written to.
func (b Builder) WithTraceLogger(logger *log.Logger) Builder {
	b.traceLogger = logger
	return b
}

// WithMonitoring sets the simulation to serve its state over HTTP.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser sets the simulation to open the monitoring dashboard in the
// default browser.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.monitorOn && b.openBrowser {
		panic("browser cannot be opened when monitoring is disabled")
	}

	if !b.recordingOn && b.outputFileName != "" {
		panic("output file name cannot be set when recording is disabled")
	}
}

// Build builds the simulation. It fails when the backing store file cannot
// be opened.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	s := &Simulation{
		id:            xid.New().String(),
		compNameIndex: make(map[string]int),
	}

	backingStore, err := backingstore.Open(b.backingStorePath)
	if err != nil {
		return nil, err
	}
	s.backingStore = backingStore

	s.storage = mem.NewStorage(vm.MemorySize)
	s.tlb = tlb.MakeBuilder().Build("TLB")
	s.mmu = mmu.MakeBuilder().
		WithTLB(s.tlb).
		WithPageSource(s.backingStore).
		WithStorage(s.storage).
		Build("MMU")

	s.RegisterComponent(s.mmu)
	s.RegisterComponent(s.tlb)
	s.RegisterComponent(s.backingStore)

	b.setUpRecording(s)
	b.setUpTracing(s)
	b.setUpMonitoring(s)

	return s, nil
}

func (b Builder) setUpRecording(s *Simulation) {
	if !b.recordingOn {
		return
	}

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "vmsim_" + s.id
	}

	s.dataRecorder = datarecording.New(outputPath)
	s.mmu.AcceptHook(trace.NewDBTracer(s.dataRecorder))
}

func (b Builder) setUpTracing(s *Simulation) {
	if b.traceLogger == nil {
		return
	}

	s.mmu.AcceptHook(trace.NewLogTracer(b.traceLogger))
}

func (b Builder) setUpMonitoring(s *Simulation) {
	if !b.monitorOn {
		return
	}

	monitor := monitoring.NewMonitor()
	if b.monitorPort > 0 {
		monitor.WithPortNumber(b.monitorPort)
	}
	if b.openBrowser {
		monitor.WithBrowser()
	}

	monitor.RegisterStatsProvider(s.mmu)
	for _, c := range s.components {
		monitor.RegisterComponent(c)
	}

	monitor.StartServer()

	s.monitor = monitor
}
