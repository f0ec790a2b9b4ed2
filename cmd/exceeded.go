package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/cusage/internal/cli"
	"github.com/theirongolddev/cusage/internal/model"
	"github.com/theirongolddev/cusage/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagExceededUser string
	flagExceededDate string
)

var exceededCmd = &cobra.Command{
	Use:   "exceeded",
	Short: "Days on which users went over quota",
	RunE:  runExceeded,
}

func init() {
	exceededCmd.Flags().StringVar(&flagExceededUser, "user", "", "Show one user's exceeded days")
	exceededCmd.Flags().StringVar(&flagExceededDate, "date", "", "Restrict to one date (YYYY-MM-DD)")
	rootCmd.AddCommand(exceededCmd)
}

func runExceeded(_ *cobra.Command, _ []string) error {
	if flagExceededDate != "" {
		if _, err := time.Parse(model.DateLayout, flagExceededDate); err != nil {
			return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", flagExceededDate)
		}
	}

	data, err := loadData()
	if err != nil {
		return err
	}
	if noData(data) {
		return nil
	}

	users := pipeline.UsersExceedingQuota(data.records)
	if flagExceededUser != "" {
		users = []string{flagExceededUser}
	}

	fmt.Println()
	if flagExceededUser == "" {
		fmt.Println(cli.RenderTitle(fmt.Sprintf("EXCEEDED QUOTA  %d users", len(users))))
	} else {
		fmt.Println(cli.RenderTitle("EXCEEDED QUOTA  " + flagExceededUser))
	}
	fmt.Println()

	if len(users) == 0 {
		fmt.Println("  Nobody exceeded their quota.")
		fmt.Println()
		return nil
	}

	if flagExceededUser != "" {
		if len(pipeline.FilterByUser(data.records, flagExceededUser)) == 0 {
			return errors.New("no records for user " + flagExceededUser)
		}
		s := pipeline.UserExceededSummary(data.records, flagExceededUser)
		pairs := [][2]string{
			{"Days over quota", fmt.Sprintf("%d", s.TotalExceededDays)},
			{"Exceeded requests", cli.FormatRequests(s.TotalExceededRequests)},
			{"Average per day", cli.FormatRequests(s.AverageExceededPerDay)},
		}
		if s.WorstDay != nil {
			pairs = append(pairs, [2]string{"Worst day", fmt.Sprintf("%s  %s of %s",
				s.WorstDay.Date, cli.FormatRequests(s.WorstDay.ExceededRequests), cli.FormatRequests(s.WorstDay.TotalRequests))})
		}
		fmt.Print(cli.RenderKeyValues(pairs))
		fmt.Println()
	}

	var rows [][]string
	for _, user := range users {
		for _, d := range pipeline.ExceededRequestDetails(data.records, flagExceededDate, user) {
			rows = append(rows, []string{
				d.User,
				d.Date,
				cli.FormatRequests(d.ExceededRequests),
				cli.FormatRequests(d.CompliantRequestsOnDay),
				cli.FormatRequests(d.TotalRequestsOnDay),
				strings.Join(d.ModelsUsed, ", "),
			})
		}
	}
	if len(rows) == 0 {
		fmt.Println("  No exceeded requests for the selection.")
		fmt.Println()
		return nil
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"User", "Date", "Exceeded", "Compliant", "Total", "Models"},
		Rows:     rows,
		LeftCols: 2,
	}))
	fmt.Println()
	return nil
}
