package main

import (
	"flag"
	"fmt"
	"os"

	"betkeeper/internal/valuebet"
)

// One-shot value-bet check from the command line:
//
//	valuebet -odds 2.10 -prob 52
func main() {
	odds := flag.Float64("odds", 0, "decimal odds (>= 1.01)")
	prob := flag.Float64("prob", 0, "estimated win probability in percent (0-100]")
	flag.Parse()

	assessment, err := valuebet.Assess(*odds, *prob)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	fmt.Printf("Odds:                %.2f\n", assessment.Odds)
	fmt.Printf("Your probability:    %.2f%%\n", assessment.ProbabilityPercent)
	fmt.Printf("Implied probability: %.2f%%\n", assessment.ImpliedProbabilityPercent)
	fmt.Printf("Value:               %+.2f%%\n", assessment.ValuePercent)
	fmt.Printf("Expected value:      %+.2f%% per unit staked\n", assessment.ExpectedValuePercent)
	fmt.Printf("Kelly stake:         %.2f%% of bankroll\n", assessment.KellyStakePercent)
	if assessment.IsValueBet {
		fmt.Println("Verdict:             VALUE BET")
	} else {
		fmt.Println("Verdict:             no value")
	}
}
