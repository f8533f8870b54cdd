// Package diagnostics checks the classical assumptions behind a fitted linear model.
//
// Run executes four independent checks on a regression model:
//
//   - autocorrelation: Durbin-Watson with the exact two-sided p-value for the design
//   - heteroscedasticity: Koenker's studentized Breusch-Pagan test
//   - normality: Lilliefors test on the residuals
//   - multicollinearity: generalized variance inflation factors, flagged at 10
//
// Every hypothesis test rejects at Alpha = 0.05. The individual tests accept any LinearFit,
// which lets the ANOVA engine reuse them on its own residuals.
package diagnostics
