// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command divestat reports descriptive statistics (mean, standard
// deviation, percentiles) of dive time, max depth, and minimum
// temperature across a batch of dive blobs parsed with the same
// family.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/aclements/go-moremath/stats"
	"github.com/sirupsen/logrus"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/internal/diveparser"
)

func main() {
	fs := flag.NewFlagSet("divestat", flag.ExitOnError)
	pf := diveparser.Register(fs)
	fs.Parse(os.Args[1:])

	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: divestat -family=... file...")
		os.Exit(1)
	}

	dctx := godc.NewContext(logrus.StandardLogger(), context.Background())
	p, err := pf.Build(dctx)
	if err != nil {
		log.Fatal(err)
	}

	var diveTimes, maxDepths, minTemps stats.Sample
	for _, name := range files {
		data, err := ioutil.ReadFile(name)
		if err != nil {
			log.Fatal(err)
		}
		p.SetData(data)

		var divetime int
		if st := p.GetField(godc.FieldDiveTime, 0, &divetime); st.Ok() {
			diveTimes.Xs = append(diveTimes.Xs, float64(divetime))
		}

		var maxdepth float64
		if st := p.GetField(godc.FieldMaxDepth, 0, &maxdepth); st.Ok() {
			maxDepths.Xs = append(maxDepths.Xs, maxdepth)
		}

		var tempmin float64
		if st := p.GetField(godc.FieldTemperatureMinimum, 0, &tempmin); st.Ok() {
			minTemps.Xs = append(minTemps.Xs, tempmin)
		}
	}

	report("divetime (s)", &diveTimes)
	report("maxdepth (m)", &maxDepths)
	report("temperature min (°C)", &minTemps)
}

func report(name string, s *stats.Sample) {
	if len(s.Xs) == 0 {
		fmt.Printf("%s: no data\n", name)
		return
	}
	fmt.Printf("%s: n=%d mean=%.2f stddev=%.2f median=%.2f\n",
		name, len(s.Xs), s.Mean(), s.StdDev(), s.Quantile(0.5))
}
