// Package report is a thin client for the external report-generation
// service, which scrapes academic results and produces an AI remark
// for a student.
package report
