package catalog

import "github.com/terra-clan/coding-tracker/internal/models"

func defaultChallenges() []*models.Challenge {
	return []*models.Challenge{
		{
			ID:          "two-sum",
			Title:       "Two Sum",
			Description: "Given an array of integers nums and an integer target, return indices of the two numbers such that they add up to target. You may assume that each input would have exactly one solution.",
			Difficulty:  models.DifficultyEasy,
			TestCases: []models.TestCase{
				{Input: "[2,7,11,15], 9", Output: "[0,1]"},
				{Input: "[3,2,4], 6", Output: "[1,2]"},
			},
		},
		{
			ID:          "reverse-string",
			Title:       "Reverse String",
			Description: "Write a function that reverses a string. The input string is given as an array of characters.",
			Difficulty:  models.DifficultyEasy,
			TestCases: []models.TestCase{
				{Input: "hello", Output: "olleh"},
				{Input: "world", Output: "dlrow"},
			},
		},
		{
			ID:          "palindrome-check",
			Title:       "Palindrome Check",
			Description: "Given a string s, return true if it is a palindrome, otherwise return false. A palindrome is a string that reads the same forward and backward.",
			Difficulty:  models.DifficultyEasy,
			TestCases: []models.TestCase{
				{Input: "racecar", Output: "true"},
				{Input: "hello", Output: "false"},
			},
		},
		{
			ID:          "fizzbuzz",
			Title:       "FizzBuzz",
			Description: "Write a function that returns an array of strings from 1 to n. For multiples of 3, add 'Fizz', for multiples of 5, add 'Buzz', and for multiples of both add 'FizzBuzz'.",
			Difficulty:  models.DifficultyEasy,
			TestCases: []models.TestCase{
				{Input: "15", Output: "['1','2','Fizz','4','Buzz','Fizz','7','8','Fizz','Buzz','11','Fizz','13','14','FizzBuzz']"},
			},
		},
	}
}
