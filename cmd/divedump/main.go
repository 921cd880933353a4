// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command divedump prints a dive blob's header fields and sample stream
// as text, one parser family at a time.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/internal/diveparser"
	"github.com/divecomputer/godc/sample"
)

func main() {
	fs := flag.NewFlagSet("divedump", flag.ExitOnError)
	flagInput := fs.String("i", "", "input dive blob `file`")
	pf := diveparser.Register(fs)
	fs.Parse(os.Args[1:])

	if *flagInput == "" {
		fmt.Fprintln(os.Stderr, "missing -i")
		fs.Usage()
		os.Exit(1)
	}

	dctx := godc.NewContext(logrus.StandardLogger(), context.Background())
	p, err := pf.Build(dctx)
	if err != nil {
		log.Fatal(err)
	}

	data, err := ioutil.ReadFile(*flagInput)
	if err != nil {
		log.Fatal(err)
	}
	p.SetData(data)

	dumpHeader(p)
	fmt.Println()

	st := p.SamplesForeach(dumpSample)
	if !st.Ok() {
		log.Fatal(st)
	}
}

func dumpHeader(p godc.Parser) {
	dt, st := p.GetDateTime()
	if st.Ok() {
		fmt.Printf("date: %04d-%02d-%02d %02d:%02d:%02d\n",
			dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second)
	} else if st != godc.StatusUnsupported {
		fmt.Printf("date: %v\n", st)
	}

	var divetime int
	if st := p.GetField(godc.FieldDiveTime, 0, &divetime); st.Ok() {
		fmt.Printf("divetime: %ds\n", divetime)
	}

	var maxdepth float64
	if st := p.GetField(godc.FieldMaxDepth, 0, &maxdepth); st.Ok() {
		fmt.Printf("maxdepth: %.1fm\n", maxdepth)
	}

	var tempmin float64
	if st := p.GetField(godc.FieldTemperatureMinimum, 0, &tempmin); st.Ok() {
		fmt.Printf("temperature (min): %.1f°C\n", tempmin)
	}

	var gascount int
	if st := p.GetField(godc.FieldGasMixCount, 0, &gascount); st.Ok() {
		for i := 0; i < gascount; i++ {
			var gm sample.GasMix
			if st := p.GetField(godc.FieldGasMix, i, &gm); st.Ok() {
				fmt.Printf("gasmix[%d]: O2=%.0f%% He=%.0f%%\n", i, gm.Oxygen*100, gm.Helium*100)
			}
		}
	}
}

func dumpSample(s sample.Sample) bool {
	switch s.Kind {
	case sample.KindDepth:
		fmt.Printf("%6ds depth     %.1fm\n", s.Time, s.Depth)
	case sample.KindTemperature:
		fmt.Printf("%6ds temp      %.1f°C\n", s.Time, s.Temperature)
	case sample.KindPressure:
		fmt.Printf("%6ds pressure  tank=%d %.0fbar\n", s.Time, s.TankIndex, s.Pressure)
	case sample.KindPPO2:
		fmt.Printf("%6ds ppo2      %.2fbar\n", s.Time, s.PPO2)
	case sample.KindGasChange:
		fmt.Printf("%6ds gaschange mix=%d O2=%.0f%% He=%.0f%%\n", s.Time, s.GasChange.Mix, s.GasChange.Oxygen*100, s.GasChange.Helium*100)
	case sample.KindDeco:
		fmt.Printf("%6ds deco      type=%d depth=%.1fm time=%ds\n", s.Time, s.Deco.Type, s.Deco.Depth, s.Deco.Time)
	case sample.KindEvent:
		fmt.Printf("%6ds event     type=%d value=%d flags=%d\n", s.Time, s.Event.Type, s.Event.Value, s.Event.Flags)
	case sample.KindRBT:
		fmt.Printf("%6ds rbt       %dmin\n", s.Time, s.RBT)
	case sample.KindHeartbeat:
		fmt.Printf("%6ds heartbeat %dbpm\n", s.Time, s.Heartbeat)
	case sample.KindBearing:
		fmt.Printf("%6ds bearing   %d°\n", s.Time, s.Bearing)
	case sample.KindCNS:
		fmt.Printf("%6ds cns       %.0f%%\n", s.Time, s.CNS*100)
	}
	return true
}
