package database

import "embed"

// PartitionSQL 内嵌分区表资产：建表 SQL 与保留策略配置。
// 目前只有消息表按月分区，新的分区表在 partitions/ 下追加即可
//
//go:embed partitions/*.sql partitions/*.conf
var PartitionSQL embed.FS
