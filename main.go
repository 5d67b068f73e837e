package main

import (
	"log"

	"Sitebook/Config"
	"Sitebook/CronJobs"
	"Sitebook/FiberConfig"
	"Sitebook/Models"
)

func main() {
	Config.Load()
	Models.Connect()

	overdueChecker := CronJobs.NewOverdueChecker(Models.DB, Config.Current.RunChecksOnBoot)
	if err := overdueChecker.Start(Config.Current.OverdueCronAt); err != nil {
		log.Printf("Failed to start overdue checker: %v", err)
	}
	defer overdueChecker.Stop()

	FiberConfig.FiberConfig()
}
