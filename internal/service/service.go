// Package service contains the business logic.
//
// It sits between the handler layer and the classifier. It receives the
// decoded request from the handler, builds the feature vector, runs the
// model and maps its output to a label.
package service
