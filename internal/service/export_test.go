package service

var IsWeeklyAggregation = isWeeklyAggregation
