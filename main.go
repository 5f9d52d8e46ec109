// RoboQuest 后端服务：账号、学习进度、课程目录与内容管理 API。

package main

import (
	"flag"
	"log"

	"roboquest_backend/internal/app"
	"roboquest_backend/internal/config"
	"roboquest_backend/pkg/logger"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件所在目录")
	skipSeed := flag.Bool("skip-seed", false, "启动时不写入内置课程目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.SkipSeed = *skipSeed

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run(*configDir)
}
