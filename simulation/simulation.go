// Package simulation provides the service to assemble and run a simulation.
package simulation

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem"
	"github.com/sarchlab/vmsim/mem/backingstore"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/vm"
	"github.com/sarchlab/vmsim/vm/mmu"
	"github.com/sarchlab/vmsim/vm/tlb"
)

// A Simulation translates a stream of logical addresses, one at a time, and
// reports the outcome of each translation.
type Simulation struct {
	id string

	backingStore *backingstore.Comp
	storage      *mem.Storage
	tlb          *tlb.Comp
	mmu          *mmu.Comp

	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor

	components    []monitoring.Named
	compNameIndex map[string]int

	terminated bool
}

// ID returns the ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetDataRecorder returns the data recorder used in the simulation, if any.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation, if any.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// Stats returns the counts of the translations performed so far.
func (s *Simulation) Stats() mmu.Stats {
	return s.mmu.Stats()
}

// RegisterComponent registers a component with the simulation.
func (s *Simulation) RegisterComponent(c monitoring.Named) {
	compName := c.Name()
	if _, ok := s.compNameIndex[compName]; ok {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1
}

// GetComponentByName returns the component with the given name.
func (s *Simulation) GetComponentByName(name string) monitoring.Named {
	return s.components[s.compNameIndex[name]]
}

// Components returns all the registered components.
func (s *Simulation) Components() []monitoring.Named {
	return s.components
}

// Run consumes the address stream, writing one line per translated address
// into out, followed by the summary statistics.
//
// The stream holds one decimal logical address per line. Values wider than 16
// bits are truncated to their low 16 bits. Blank lines are skipped.
func (s *Simulation) Run(in io.Reader, out io.Writer) error {
	var bar *monitoring.ProgressBar
	if s.monitor != nil {
		bar = s.monitor.CreateProgressBar("Translating addresses", 0)
		defer s.monitor.CompleteProgressBar(bar)
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		value, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid logical address %q", line)
		}

		err = s.translateOne(vm.VAddrFromInt(value), out)
		if err != nil {
			if errors.Is(err, mmu.ErrNoFreeFrames) {
				s.PrintSummary(out)
			}

			return err
		}

		if bar != nil {
			bar.IncrementFinished(1)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("cannot read the address stream: %w", err)
	}

	s.PrintSummary(out)

	return nil
}

func (s *Simulation) translateOne(addr vm.VAddr, out io.Writer) error {
	trans, err := s.mmu.Translate(addr)
	if err != nil {
		return fmt.Errorf("cannot translate logical address %d: %w",
			addr, err)
	}

	fmt.Fprintf(out, "Logical Address: %d Physical Address: %d Value: %d\n",
		trans.VAddr, trans.PAddr, trans.Value)

	return nil
}

// PrintSummary writes the statistics of the translations performed so far.
func (s *Simulation) PrintSummary(out io.Writer) {
	stats := s.mmu.Stats()

	fmt.Fprintf(out, "\nStatistics:\n")
	fmt.Fprintf(out, "Total addresses translated: %d\n", stats.Total)

	fmt.Fprintf(out, "TLB Hits: %d\n", stats.TLBHits)
	if rate, ok := stats.TLBHitRate(); ok {
		fmt.Fprintf(out, "TLB Hit Rate: %.2f%%\n", rate*100)
	} else {
		fmt.Fprintf(out, "TLB Hit Rate: no data\n")
	}

	fmt.Fprintf(out, "Page Faults: %d\n", stats.PageFaults)
	if rate, ok := stats.PageFaultRate(); ok {
		fmt.Fprintf(out, "Page Fault Rate: %.2f%%\n", rate*100)
	} else {
		fmt.Fprintf(out, "Page Fault Rate: no data\n")
	}
}

// runStatsEntry is the summary row recorded when a recorded run terminates.
type runStatsEntry struct {
	Total         uint64
	TLBHits       uint64
	PageFaults    uint64
	TLBHitRate    float64
	PageFaultRate float64
}

// Terminate terminates the simulation. A second call has no effect.
func (s *Simulation) Terminate() {
	if s.terminated {
		return
	}
	s.terminated = true

	if s.dataRecorder != nil {
		s.recordRunStats()
		s.dataRecorder.Flush()
	}

	s.backingStore.Close()
}

func (s *Simulation) recordRunStats() {
	stats := s.mmu.Stats()

	entry := runStatsEntry{
		Total:      stats.Total,
		TLBHits:    stats.TLBHits,
		PageFaults: stats.PageFaults,
	}
	entry.TLBHitRate, _ = stats.TLBHitRate()
	entry.PageFaultRate, _ = stats.PageFaultRate()

	s.dataRecorder.CreateTable("run_stats", runStatsEntry{})
	s.dataRecorder.InsertData("run_stats", entry)
}
