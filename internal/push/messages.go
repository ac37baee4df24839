package push

import "math/rand/v2"

// Message is one localized title/body pair for a session-end reminder.
type Message struct {
	Title string
	Body  string
}

// The reminder pool. One entry is picked pseudo-randomly per send so
// repeated reminders don't read identically.
var messages = []Message{
	{
		Title: "先生！お仕事の時間ですよ！",
		Body:  "生徒さんたちが待ってます！",
	},
	{
		Title: "先生、お仕事お疲れ様です。",
		Body:  "生徒のみなさんがお待ちです。",
	},
}

func randomMessage() Message {
	return messages[rand.IntN(len(messages))]
}
