// Package model fits and scores the rating regressor.
//
// Regressor is the capability the pipeline depends on. LightGBM satisfies it
// with the scigo histogram boosting trainer and is the default engine.
// GradientBoosting is the builtin engine: least-squares boosting over shallow
// regression trees. Both take the same Params with the customary defaults of
// 100 stages, learning rate 0.1, depth 3, and the target mean as the initial
// estimate.
package model
