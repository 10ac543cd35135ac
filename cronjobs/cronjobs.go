package cronjobs

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"go-disasterscout/processor"
)

const scanTimeout = 2 * time.Minute

// WatchTarget is a region/topic pair scanned on a schedule.
type WatchTarget struct {
	Region string
	Topic  string
}

// ParseWatchRegions parses a "Region|topic;Region|topic" string into watch
// targets. Entries without a topic default to "disaster". Blank entries are
// skipped.
func ParseWatchRegions(value string) []WatchTarget {
	var targets []WatchTarget
	for _, entry := range strings.Split(value, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		region := entry
		topic := "disaster"
		if i := strings.Index(entry, "|"); i >= 0 {
			region = strings.TrimSpace(entry[:i])
			if t := strings.TrimSpace(entry[i+1:]); t != "" {
				topic = t
			}
		}
		if region == "" {
			continue
		}
		targets = append(targets, WatchTarget{Region: region, Topic: topic})
	}
	return targets
}

func runScan(scanner *processor.Scanner, target WatchTarget) {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	summary, err := scanner.ScanRegion(ctx, target.Region, target.Topic)
	if err != nil {
		log.Printf("CronJob: scan failed for %q (%s): %v", target.Region, target.Topic, err)
		return
	}
	log.Printf("CronJob: scan done for %q (%s): processed=%d upserts=%d",
		target.Region, target.Topic, summary.Processed, summary.Upserts)
}

func InitCronJobs(scanner *processor.Scanner, watchRegions string) {
	targets := ParseWatchRegions(watchRegions)
	if len(targets) == 0 {
		log.Println("No watch regions configured, cron jobs disabled")
		return
	}

	log.Println("\nStarting Cron Jobs -------------------------------------------------------")
	c := cron.New()

	// Stagger each target by a minute so scans do not fire at the same time.
	for i, target := range targets {
		target := target
		schedule := fmt.Sprintf("%d-59/15 * * * *", i%15)
		_, err := c.AddFunc(schedule, func() {
			log.Printf("\nCronJob: Watch scan running for %q (%s)", target.Region, target.Topic)
			runScan(scanner, target)
		})
		if err != nil {
			log.Println("Error scheduling watch scan for", target.Region, err)
		}
	}

	c.Start()
}
