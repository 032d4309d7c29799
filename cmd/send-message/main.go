package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/theialabs/theia-relay/feishu"
)

func main() {
	_ = godotenv.Load()

	appID := os.Getenv("FEISHU_APP_ID")
	appSecret := os.Getenv("FEISHU_APP_SECRET")

	if appID == "" || appSecret == "" {
		fmt.Println("Error: FEISHU_APP_ID and FEISHU_APP_SECRET must be set")
		os.Exit(1)
	}

	if len(os.Args) < 3 {
		fmt.Println("Usage: send-message <chat_id> <message>")
		os.Exit(1)
	}

	chatID := os.Args[1]
	message := os.Args[2]

	client := feishu.NewClient(appID, appSecret)
	if err := client.SendText(chatID, message); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Message sent successfully!")
}
