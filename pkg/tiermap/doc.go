// Package tiermap classifies text into the IAB content taxonomy.
//
// A text is embedded and ranked against one vector per top-level domain.
// The winning domain's categories are then ranked by a reasoning provider,
// or by local heuristics when none is available, and a reader profile is
// estimated alongside.
//
// Quick start:
//
//	t, err := tiermap.New(tiermap.WithModelDir("models/"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer t.Close()
//
//	res, _ := t.Classify(ctx, "The refreshed crossover gets a hybrid drivetrain.")
//	fmt.Println(res.Domain, res.Categories[0].Name) // Automotive Auto Body Styles
//
// A Tiermap is safe for concurrent use. Create once, reuse across requests.
package tiermap
