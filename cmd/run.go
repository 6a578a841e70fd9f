package cmd

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cloudsim-rl/cloudsim-core/sim"
)

var outDir string

// runCmd drives the core headlessly with one baseline assignment policy
// (random / round-robin / least-connections / horizontal-scale), grounded
// on the per-policy main loops in the original Java gateway's
// loadbalancers package. These are thin drivers: they instantiate
// sim.Driver and invoke it in a loop, never touching engine internals
// directly.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one baseline load-balancing policy headlessly",
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := sim.LoadSimulationSettings(configPath)
		if err != nil {
			logrus.Fatalf("loading settings: %v", err)
		}

		policy, ok := baselinePolicies[baseline]
		if !ok {
			logrus.Fatalf("unknown baseline %q (want one of: random, roundrobin, leastconn, horizontal)", baseline)
		}

		driver := sim.NewDriver(settings)
		obs, _, err := driver.Reset(seed)
		if err != nil {
			logrus.Fatalf("reset failed: %v", err)
		}

		step := 0
		for {
			step++
			action := policy.Next(driver, obs)
			var terminated, truncated bool
			obs, _, terminated, truncated, _ = driver.Step(action)
			if terminated || truncated {
				break
			}
		}

		logrus.Infof("%s baseline finished at clock %d after %d steps", baseline, driver.Clock(), step)

		if outDir != "" {
			if err := writeResults(driver, outDir); err != nil {
				logrus.Fatalf("writing results: %v", err)
			}
		}

		driver.Close()
	},
}

func init() {
	runCmd.Flags().StringVar(&baseline, "baseline", "roundrobin", "Baseline policy: random, roundrobin, leastconn, horizontal")
	runCmd.Flags().StringVar(&outDir, "out", "", "Directory to write cloudlets.csv/vms.csv results to (skipped if empty)")
}

// writeResults dumps the final cloudlet and VM state to two CSV files
// under dir, mirroring the per-run result exports of the original
// gateway's CloudletsTableBuilder/VmsTableBuilder.
func writeResults(d *sim.Driver, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeCloudletResults(d, dir+"/cloudlets.csv"); err != nil {
		return err
	}
	return writeVmResults(d, dir+"/vms.csv")
}

func writeCloudletResults(d *sim.Driver, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"id", "status", "required_cores", "length_mi", "finished_length_mi", "arrival_time", "finish_time", "bound_vm_id"}); err != nil {
		return err
	}
	for _, c := range d.AllCloudlets() {
		row := []string{
			strconv.FormatInt(c.ID, 10),
			string(c.Status),
			strconv.FormatInt(c.RequiredCores, 10),
			strconv.FormatFloat(c.Length, 'f', -1, 64),
			strconv.FormatFloat(c.FinishedLength, 'f', -1, 64),
			strconv.FormatInt(c.ArrivalTime, 10),
			strconv.FormatInt(c.FinishTime, 10),
			strconv.FormatInt(c.BoundVmID, 10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func writeVmResults(d *sim.Driver, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"id", "type", "cores", "host_id", "state"}); err != nil {
		return err
	}
	for _, vm := range d.AllVMs() {
		row := []string{
			strconv.FormatInt(vm.ID, 10),
			string(vm.Type),
			strconv.FormatInt(vm.Cores, 10),
			strconv.FormatInt(vm.HostID, 10),
			string(vm.State),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
