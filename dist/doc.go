// Package dist provides the reference distributions that gonum's distuv does not cover.
//
//   - PTukey and QTukey: the studentized range distribution used by Tukey's HSD.
//   - Imhof: the distribution of a weighted sum of χ²₁ variables, evaluated at zero.
//   - DurbinWatsonPValue: the exact null distribution of the Durbin-Watson statistic
//     for a given design matrix, built on Imhof.
//   - Lilliefors: the Kolmogorov-Smirnov normality test with estimated mean and variance.
//
// Student t, F, χ² and normal probabilities come straight from gonum.org/v1/gonum/stat/distuv.
package dist
